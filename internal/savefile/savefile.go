// Package savefile finds the save exports that can be extracted.
package savefile

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/ubuntu/decorate"
)

// File is a candidate save.
type File struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	ModTime time.Time `json:"modTime"`
	Size    int64     `json:"size"`
}

// List returns the files under dir whose name ends with ext, newest first.
// A missing directory holds no saves.
func List(fsys afero.Fs, dir, ext string) (files []File, err error) {
	defer decorate.OnError(&err, "could not list saves in %s", dir)

	if _, err := fsys.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	ext = strings.ToLower(ext)
	err = afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() || !strings.HasSuffix(strings.ToLower(info.Name()), ext) {
			return nil
		}
		files = append(files, File{
			Path:    path,
			Name:    strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(files, func(a, b File) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// Find returns the save matching name: a path to an existing file, or the name of a listed save
// with or without its extension.
func Find(fsys afero.Fs, dir, ext, name string) (File, error) {
	if info, err := fsys.Stat(name); err == nil && info.Mode().IsRegular() {
		return File{
			Path:    name,
			Name:    strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		}, nil
	}

	files, err := List(fsys, dir, ext)
	if err != nil {
		return File{}, err
	}
	for _, f := range files {
		if f.Name == name || filepath.Base(f.Path) == name {
			return f, nil
		}
	}
	return File{}, &fs.PathError{Op: "find", Path: name, Err: fs.ErrNotExist}
}
