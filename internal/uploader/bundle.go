package uploader

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ubuntu/decorate"
)

// bundle writes at dst a zip archive of files, named relative to root, and returns those names.
// Duplicated files are stored once.
func (c *Client) bundle(root, dst string, files []string) (names []string, err error) {
	defer decorate.OnError(&err, "could not build asset bundle")

	byName := make(map[string]string, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s is not under %s", f, root)
		}
		byName[filepath.ToSlash(rel)] = f
	}
	for n := range byName {
		names = append(names, n)
	}
	slices.Sort(names)

	out, err := c.fs.Create(dst)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	for _, n := range names {
		if err := c.addFile(zw, n, byName[n]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return names, nil
}

// addFile stores the file at path as name. Assets are already compressed images.
func (c *Client) addFile(zw *zip.Writer, name, path string) error {
	in, err := c.fs.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
