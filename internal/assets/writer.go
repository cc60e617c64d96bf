package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/fileutils"
	"github.com/osallek/osa-extractor/internal/game"
	"github.com/osallek/osa-extractor/internal/hasher"
	"github.com/osallek/osa-extractor/internal/staging"
	"github.com/spf13/afero"
	"github.com/ubuntu/decorate"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Results reported to the observer of a Writer.
const (
	ResultWritten = "written"
	ResultReused  = "reused"
	ResultFailed  = "failed"
)

// Item is one entity whose image is to be written.
type Item struct {
	Name  string
	Image *game.ImageRef
}

// Writer renders and converts images into a staging directory.
type Writer struct {
	stage   *staging.Dir
	src     afero.Fs
	workers int
	maxSize int
	log     *slog.Logger
	observe func(category, result string)

	// sourceHashes caches digests of source files, keyed by path.
	sourceHashes sync.Map
}

type options struct {
	src     afero.Fs
	workers int
	maxSize int
	log     *slog.Logger
	observe func(category, result string)
}

// Options represents an optional function to override Writer default values.
type Options func(*options)

// WithSourceFs sets the filesystem game images are read from. It defaults to the staging one.
func WithSourceFs(fsys afero.Fs) Options {
	return func(o *options) {
		o.src = fsys
	}
}

// WithWorkers bounds the number of images processed at the same time.
func WithWorkers(n int) Options {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMaxImageSize sets the longest edge, in pixels, of written images. 0 disables downscaling.
func WithMaxImageSize(n int) Options {
	return func(o *options) {
		o.maxSize = n
	}
}

// WithLogger sets the logger of the writer.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// WithObserver registers a function called with the category and the result of every asset handled.
func WithObserver(f func(category, result string)) Options {
	return func(o *options) {
		o.observe = f
	}
}

// NewWriter returns a Writer staging its files in stage.
func NewWriter(stage *staging.Dir, args ...Options) *Writer {
	opts := options{
		src:     stage.Fs(),
		workers: constants.DefaultWorkers,
		maxSize: constants.DefaultMaxImageSize,
		log:     slog.Default(),
		observe: func(string, string) {},
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Writer{
		stage:   stage,
		src:     opts.src,
		workers: opts.workers,
		maxSize: opts.maxSize,
		log:     opts.log,
		observe: opts.observe,
	}
}

// Render writes img as <category>/<name>.png, then renames it after its content hash.
func (w *Writer) Render(cat Category, name string, img image.Image) (staging.Asset, error) {
	return w.render(cat, name, w.downscale(img))
}

func (w *Writer) render(cat Category, name string, img image.Image) (a staging.Asset, err error) {
	defer decorate.OnError(&err, "could not render %s/%s", cat, name)

	data, err := encode(img)
	if err != nil {
		return staging.Asset{}, err
	}

	path := w.stage.Path(cat.Dir(), name+constants.AssetExt)
	if err := fileutils.AtomicWrite(w.stage.Fs(), path, data); err != nil {
		return staging.Asset{}, errors.Join(staging.ErrIO, err)
	}
	return w.stage.Finalize(string(cat), name, path)
}

// RenderAll renders every item of the category concurrently.
// Items failing to render are logged and skipped. Only a cancelled context is returned as an error.
func (w *Writer) RenderAll(ctx context.Context, cat Category, items []Item) ([]staging.Asset, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	results := make([]*staging.Asset, len(items))
	for i, it := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			img, err := it.Image.Load(w.src)
			if err == nil {
				var a staging.Asset
				if a, err = w.Render(cat, it.Name, img); err == nil {
					results[i] = &a
					w.observe(string(cat), ResultWritten)
					return nil
				}
			}
			w.log.Warn("Could not write asset, skipping it", "category", cat, "name", it.Name, "error", err)
			w.observe(string(cat), ResultFailed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assets := make([]staging.Asset, 0, len(items))
	for _, a := range results {
		if a != nil {
			assets = append(assets, *a)
		}
	}
	return assets, nil
}

// Convert stages the image of an entity as <category>/<source hash>.png, where the name comes
// from the hash of the source file rather than of the converted one.
// An already converted source is reused.
func (w *Writer) Convert(cat Category, name string, ref *game.ImageRef) (a staging.Asset, err error) {
	defer decorate.OnError(&err, "could not convert %s/%s", cat, name)

	if ref.Empty() {
		return staging.Asset{}, game.ErrNoImage
	}
	if ref.Path == "" {
		return w.Render(cat, name, ref.Pixels)
	}

	hash, err := w.SourceHash(ref.Path)
	if err != nil {
		return staging.Asset{}, err
	}
	a = staging.Asset{
		Category: string(cat),
		Name:     name,
		Path:     w.stage.Path(cat.Dir(), hash+constants.AssetExt),
		Hash:     hash,
	}

	if fileutils.Exists(w.stage.Fs(), a.Path) {
		w.stage.Register(a)
		w.observe(string(cat), ResultReused)
		return a, nil
	}

	img, err := ref.Load(w.src)
	if err != nil {
		return staging.Asset{}, err
	}
	if !cat.Reference() {
		img = w.downscale(img)
	}
	data, err := encode(img)
	if err != nil {
		return staging.Asset{}, err
	}
	if err := fileutils.AtomicWrite(w.stage.Fs(), a.Path, data); err != nil {
		return staging.Asset{}, errors.Join(staging.ErrIO, err)
	}

	w.stage.Register(a)
	w.observe(string(cat), ResultWritten)
	return a, nil
}

// SourceHash returns the digest of a source file, computing it once per path.
func (w *Writer) SourceHash(path string) (string, error) {
	if h, ok := w.sourceHashes.Load(path); ok {
		return h.(string), nil
	}
	h, err := hasher.File(w.src, path)
	if err != nil {
		return "", err
	}
	w.sourceHashes.Store(path, h)
	return h, nil
}

// Hash returns the content hash naming the asset of an entity: the staged file when the entity
// was rendered, else its source file. It is empty when neither is available.
func (w *Writer) Hash(cat Category, name string, ref *game.ImageRef) string {
	if a, ok := w.stage.Lookup(string(cat), name); ok {
		return a.Hash
	}
	if ref == nil || ref.Path == "" {
		return ""
	}
	h, err := w.SourceHash(ref.Path)
	if err != nil {
		w.log.Debug("No hash for asset", "category", cat, "name", name, "error", err)
		return ""
	}
	return h
}

// downscale shrinks img so that its longest edge fits the configured size.
func (w *Writer) downscale(img image.Image) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if w.maxSize <= 0 || longest <= w.maxSize {
		return img
	}

	width := max(1, b.Dx()*w.maxSize/longest)
	height := max(1, b.Dy()*w.maxSize/longest)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, game.ErrNoImage
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("could not encode image: %v", err)
	}
	return buf.Bytes(), nil
}
