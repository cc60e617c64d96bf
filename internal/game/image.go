package game

import (
	"errors"
	"fmt"
	"image"
	// Formats found in game and mod folders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoImage is returned when an image reference has neither pixels nor a source file.
var ErrNoImage = errors.New("no image")

// ImageRef points at the picture of an entity.
// Pixels is set when the parser already rendered the picture (sprite strips, custom flags),
// otherwise Path names the source file in the game or mod folders.
type ImageRef struct {
	Path   string      `json:"path,omitempty"`
	Pixels image.Image `json:"-"`
}

// Empty reports whether r references nothing.
func (r *ImageRef) Empty() bool {
	return r == nil || (r.Path == "" && r.Pixels == nil)
}

// Load returns the pixels of the referenced image, decoding the source file when needed.
func (r *ImageRef) Load(fsys afero.Fs) (image.Image, error) {
	if r.Empty() {
		return nil, ErrNoImage
	}
	if r.Pixels != nil {
		return r.Pixels, nil
	}

	f, err := fsys.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", r.Path, err)
	}
	return img, nil
}
