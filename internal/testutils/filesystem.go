package testutils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrInjected is returned by FailingFs for the files it is configured to fail.
var ErrInjected = errors.New("injected i/o failure")

// FailingFs wraps an afero.Fs and fails every write to a file whose base name starts with one
// of Prefixes.
type FailingFs struct {
	afero.Fs
	Prefixes []string
}

func (f FailingFs) fails(name string) bool {
	base := filepath.Base(name)
	for _, p := range f.Prefixes {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}

// Create implements afero.Fs.
func (f FailingFs) Create(name string) (afero.File, error) {
	if f.fails(name) {
		return nil, &os.PathError{Op: "create", Path: name, Err: ErrInjected}
	}
	return f.Fs.Create(name)
}

// OpenFile implements afero.Fs.
func (f FailingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 && f.fails(name) {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

// Rename implements afero.Fs.
func (f FailingFs) Rename(oldname, newname string) error {
	if f.fails(newname) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrInjected}
	}
	return f.Fs.Rename(oldname, newname)
}
