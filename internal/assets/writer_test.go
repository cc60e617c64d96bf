package assets_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/osallek/osa-extractor/internal/assets"
	"github.com/osallek/osa-extractor/internal/game"
	"github.com/osallek/osa-extractor/internal/hasher"
	"github.com/osallek/osa-extractor/internal/staging"
	"github.com/osallek/osa-extractor/internal/testutils"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter records the results reported by a Writer.
type counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *counter) observe(category, result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[category+"/"+result]++
}

func (c *counter) get(category, result string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[category+"/"+result]
}

func newWriter(t *testing.T, fsys afero.Fs, args ...assets.Options) (*assets.Writer, *staging.Dir) {
	t.Helper()

	stage, err := staging.New(fsys, "tmp")
	require.NoError(t, err, "Setup: staging.New should not return an error")
	return assets.NewWriter(stage, args...), stage
}

func TestWriteEager(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	s := testutils.NewSave(t, fsys, "game")
	c := &counter{}
	w, stage := newWriter(t, fsys, assets.WithObserver(c.observe))

	require.NoError(t, w.WriteEager(context.Background(), s), "WriteEager should not return an error")

	want := map[assets.Category][]string{
		assets.Goods:     {"copper", "fish", "grain"},
		assets.Religions: {"catholic", "protestant"},
		assets.Estates:   {"estate_church", "estate_nobles"},
		assets.Flags:     {"SCA"},
	}
	for cat, names := range want {
		got := stage.Assets(string(cat))
		require.Len(t, got, len(names), "Unexpected number of %s", cat)
		for i, a := range got {
			assert.Equal(t, names[i], a.Name)
			assert.Equal(t, stage.Path(string(cat), a.Hash+".png"), a.Path, "Staged files should be named after their hash")

			h, err := hasher.File(fsys, a.Path)
			require.NoError(t, err, "Staged file should be readable")
			assert.Equal(t, a.Hash, h, "The registered hash should match the content")
		}
		assert.Equal(t, len(names), c.get(string(cat), assets.ResultWritten), "Every %s should be reported as written", cat)
	}
	assert.Empty(t, stage.Assets(string(assets.Buildings)), "Lazy categories should not be rendered eagerly")
}

func TestWriteEagerSkipsFailures(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		breakSave func(*game.Save)
		failing   []string

		wantGoods []string
	}{
		"Write error on one good": {failing: []string{"grain"}, wantGoods: []string{"copper", "fish"}},
		"Missing source image": {
			breakSave: func(s *game.Save) { s.Game.TradeGoods[2].Image = &game.ImageRef{Path: "game/gfx/missing.png"} },
			wantGoods: []string{"fish", "grain"},
		},
		"Good without image": {
			breakSave: func(s *game.Save) { s.Game.TradeGoods[1].Image = nil },
			wantGoods: []string{"copper", "grain"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mem := afero.NewMemMapFs()
			s := testutils.NewSave(t, mem, "game")
			if tc.breakSave != nil {
				tc.breakSave(s)
			}
			h := testutils.NewMockHandler()
			c := &counter{}
			w, stage := newWriter(t, testutils.FailingFs{Fs: mem, Prefixes: tc.failing},
				assets.WithObserver(c.observe), assets.WithLogger(h.Logger()))

			require.NoError(t, w.WriteEager(context.Background(), s), "WriteEager should not fail because of one asset")

			var got []string
			for _, a := range stage.Assets(string(assets.Goods)) {
				got = append(got, a.Name)
			}
			assert.Equal(t, tc.wantGoods, got, "Only the failing good should be missing")
			assert.Equal(t, 1, c.get(string(assets.Goods), assets.ResultFailed), "The failure should be reported")
			assert.Len(t, stage.Assets(string(assets.Religions)), 2, "Other categories should not be affected")
			warnings := h.AtLevel(slog.LevelWarn)
			require.Len(t, warnings, 1, "The failure should be logged once")
			testutils.ExpectedRecord{Level: slog.LevelWarn, Message: "Could not write asset"}.Compare(t, warnings[0])
		})
	}
}

func TestWriteEagerCancelled(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	s := testutils.NewSave(t, fsys, "game")
	w, _ := newWriter(t, fsys)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, w.WriteEager(ctx, s), context.Canceled, "WriteEager should stop on a cancelled context")
}

func TestHasCustomFlag(t *testing.T) {
	t.Parallel()

	start := testutils.StartDate
	after := game.Date{Year: 1500, Month: 1, Day: 1}
	flag := &game.ImageRef{Pixels: testutils.Solid(1, 1, color.White)}
	history := func(dates ...game.Date) *game.CountryHistory {
		h := &game.CountryHistory{}
		for _, d := range dates {
			h.Events = append(h.Events, game.CountryEvent{Date: d})
		}
		return h
	}

	tests := map[string]struct {
		country game.Country

		want bool
	}{
		"Event after start": {country: game.Country{Tag: "SCA", History: history(start, after), CustomFlag: flag}, want: true},

		"Observer":             {country: game.Country{Tag: "SCA", Observer: true, History: history(after), CustomFlag: flag}},
		"Rebels":               {country: game.Country{Tag: "REB", History: history(after), CustomFlag: flag}},
		"No history":           {country: game.Country{Tag: "SCA", CustomFlag: flag}},
		"Empty history":        {country: game.Country{Tag: "SCA", History: history(), CustomFlag: flag}},
		"Only events at start": {country: game.Country{Tag: "SCA", History: history(start), CustomFlag: flag}},
		"No custom flag":       {country: game.Country{Tag: "SCA", History: history(after)}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := &game.Save{StartDate: start}
			assert.Equal(t, tc.want, assets.HasCustomFlag(s, &tc.country))
		})
	}
}

func TestWriteColors(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	s := testutils.NewSave(t, fsys, "game")
	w, stage := newWriter(t, fsys, assets.WithMaxImageSize(2))

	a, err := w.WriteColors(s.Game)
	require.NoError(t, err, "WriteColors should not return an error")
	assert.Equal(t, stage.Path("colors", a.Hash+".png"), a.Path)

	f, err := fsys.Open(a.Path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err, "The colors image should be a PNG")

	require.Equal(t, image.Rect(0, 0, len(s.Game.Provinces), 1), img.Bounds(), "The colors image should never be downscaled")
	for i, p := range s.Game.Provinces {
		r, g, b, _ := img.At(i, 0).RGBA()
		want := p.Color.RGBA()
		assert.Equal(t, [3]uint32{uint32(want.R), uint32(want.G), uint32(want.B)}, [3]uint32{r >> 8, g >> 8, b >> 8},
			"Pixel %d should hold the color of province %d", i, p.ID)
	}

	_, err = w.WriteColors(&game.Game{})
	require.ErrorIs(t, err, assets.ErrReferenceImage, "A map without province should fail")
}

func TestProvincesHash(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	s := testutils.NewSave(t, fsys, "game")
	w, _ := newWriter(t, fsys)

	got, err := w.ProvincesHash(s.Game)
	require.NoError(t, err, "ProvincesHash should not return an error")
	want, err := hasher.File(fsys, s.Game.ProvincesImage)
	require.NoError(t, err)
	assert.Equal(t, want, got, "The provinces hash should be the hash of the source image")

	_, err = w.ProvincesHash(&game.Game{ProvincesImage: "game/map/missing.bmp"})
	require.ErrorIs(t, err, assets.ErrReferenceImage, "A missing provinces image should be fatal")
	require.ErrorIs(t, err, hasher.ErrHashUnavailable)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	src := filepath.Join("game", "gfx", "big.png")
	testutils.WriteImage(t, fsys, src, testutils.Solid(16, 8, color.Black))

	c := &counter{}
	w, stage := newWriter(t, fsys, assets.WithMaxImageSize(4), assets.WithObserver(c.observe))

	a, err := w.Convert(assets.Buildings, "temple", &game.ImageRef{Path: src})
	require.NoError(t, err, "Convert should not return an error")

	srcHash, err := hasher.File(fsys, src)
	require.NoError(t, err)
	assert.Equal(t, srcHash, a.Hash, "Converted assets should be named after their source")
	assert.Equal(t, stage.Path("buildings", srcHash+".png"), a.Path)

	f, err := fsys.Open(a.Path)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, f.Close())
	require.NoError(t, err, "The converted file should be a PNG")
	assert.Equal(t, 4, cfg.Width, "The longest edge should be downscaled")
	assert.Equal(t, 2, cfg.Height, "The aspect ratio should be kept")

	b, err := w.Convert(assets.Buildings, "cathedral", &game.ImageRef{Path: src})
	require.NoError(t, err, "Convert should not return an error")
	assert.Equal(t, a.Path, b.Path, "The same source should be converted once")
	assert.Equal(t, 1, c.get("buildings", assets.ResultWritten))
	assert.Equal(t, 1, c.get("buildings", assets.ResultReused))

	_, err = w.Convert(assets.Buildings, "missing", &game.ImageRef{Path: "game/gfx/missing.png"})
	require.ErrorIs(t, err, hasher.ErrHashUnavailable, "A missing source should not be hashable")
	_, err = w.Convert(assets.Buildings, "none", nil)
	require.ErrorIs(t, err, game.ErrNoImage)
}

func TestRenderIsIdempotent(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	img := testutils.Solid(3, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var hashes []string
	for range 2 {
		w, _ := newWriter(t, fsys)
		a, err := w.Render(assets.Goods, "grain", img)
		require.NoError(t, err, "Render should not return an error")
		hashes = append(hashes, filepath.Base(a.Path))
	}
	assert.Equal(t, hashes[0], hashes[1], "Rendering the same entity twice should give the same file name")
}
