package assets

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/osallek/osa-extractor/internal/game"
	"github.com/osallek/osa-extractor/internal/hasher"
	"github.com/osallek/osa-extractor/internal/staging"
)

// ErrReferenceImage is returned when one of the map reference images cannot be hashed.
var ErrReferenceImage = errors.New("reference image unavailable")

// WriteEager renders the categories needed while building the snapshot: trade goods,
// religions with an icon, estates and custom flags.
func (w *Writer) WriteEager(ctx context.Context, s *game.Save) error {
	g := s.Game
	if g == nil {
		g = &game.Game{}
	}

	var goods, religions, estates, flags []Item
	for _, t := range g.TradeGoods {
		goods = append(goods, Item{Name: t.Name, Image: t.Image})
	}
	for _, r := range g.Religions {
		if r.Icon.Empty() {
			continue
		}
		religions = append(religions, Item{Name: r.Name, Image: r.Icon})
	}
	for _, e := range g.Estates {
		estates = append(estates, Item{Name: e.Name, Image: e.Image})
	}
	for i := range s.Countries {
		c := &s.Countries[i]
		if !HasCustomFlag(s, c) {
			continue
		}
		flags = append(flags, Item{Name: c.Tag, Image: c.CustomFlag})
	}

	for _, batch := range []struct {
		cat   Category
		items []Item
	}{
		{Goods, goods},
		{Religions, religions},
		{Estates, estates},
		{Flags, flags},
	} {
		written, err := w.RenderAll(ctx, batch.cat, batch.items)
		if err != nil {
			return err
		}
		w.log.Debug("Rendered assets", "category", batch.cat, "written", len(written), "total", len(batch.items))
	}
	return nil
}

// HasCustomFlag reports whether the flag of c is drawn from the save rather than from the game
// files: a real playable country that appeared or changed during the campaign.
func HasCustomFlag(s *game.Save, c *game.Country) bool {
	if c.Observer || c.Tag == game.RebelsTag || c.CustomFlag.Empty() {
		return false
	}
	if c.History == nil {
		return false
	}
	for _, e := range c.History.Events {
		if e.Date.After(s.StartDate) {
			return true
		}
	}
	return false
}

// WriteColors stages the colors image, one pixel per province of the map in the game order.
// Failing to hash it is fatal since the snapshot references it.
func (w *Writer) WriteColors(g *game.Game) (staging.Asset, error) {
	if g == nil || len(g.Provinces) == 0 {
		return staging.Asset{}, fmt.Errorf("%w: no province to draw", ErrReferenceImage)
	}

	img := image.NewNRGBA(image.Rect(0, 0, len(g.Provinces), 1))
	for i, p := range g.Provinces {
		img.Set(i, 0, p.Color.RGBA())
	}

	a, err := w.render(Colors, string(Colors), img)
	if err != nil {
		return staging.Asset{}, errors.Join(ErrReferenceImage, err)
	}
	w.observe(string(Colors), ResultWritten)
	return a, nil
}

// ProvincesHash returns the hash of the provinces image of the game.
// Failing to hash it is fatal since the snapshot references it.
func (w *Writer) ProvincesHash(g *game.Game) (string, error) {
	if g == nil || g.ProvincesImage == "" {
		return "", fmt.Errorf("%w: %w: no provinces image", ErrReferenceImage, hasher.ErrHashUnavailable)
	}
	h, err := w.SourceHash(g.ProvincesImage)
	if err != nil {
		return "", errors.Join(ErrReferenceImage, err)
	}
	return h, nil
}
