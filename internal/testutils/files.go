package testutils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// WriteImage encodes img at path on fsys, as BMP when path ends with .bmp, as PNG otherwise.
func WriteImage(t *testing.T, fsys afero.Fs, path string, img image.Image) {
	t.Helper()

	var buf bytes.Buffer
	var err error
	if filepath.Ext(path) == ".bmp" {
		err = bmp.Encode(&buf, img)
	} else {
		err = png.Encode(&buf, img)
	}
	require.NoError(t, err, "Setup: could not encode image")
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0750), "Setup: could not create image directory")
	require.NoError(t, afero.WriteFile(fsys, path, buf.Bytes(), 0600), "Setup: could not write image")
}

// GetFsContents returns every regular file under dir on fsys, keyed by slash separated path
// relative to dir.
func GetFsContents(t *testing.T, fsys afero.Fs, dir string) map[string][]byte {
	t.Helper()

	files := make(map[string][]byte)
	err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := afero.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = content
		return nil
	})
	require.NoError(t, err, "could not walk %s", dir)
	return files
}
