// Package staging owns the run scoped directory where derived assets and the snapshot are
// written before being sent.
//
// Every finalized asset is named after the digest of its content, so two assets with the same
// bytes share one file. The directory keeps a registry of the assets written so far, letting
// later stages reuse them without hashing again.
package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/osallek/osa-extractor/internal/fileutils"
	"github.com/osallek/osa-extractor/internal/hasher"
	"github.com/spf13/afero"
	"github.com/ubuntu/decorate"
)

// ErrIO is returned when the staging directory cannot be created, written or cleaned.
var ErrIO = errors.New("staging i/o failure")

// Asset is a content addressed file of the staging directory.
type Asset struct {
	Category string
	Name     string
	Path     string
	Hash     string
}

// Dir is a staging directory. It is safe for concurrent use.
type Dir struct {
	fs   afero.Fs
	root string
	log  *slog.Logger

	mu     sync.RWMutex
	assets map[string]map[string]Asset
}

type options struct {
	log  *slog.Logger
	name func() string
}

// Options represents an optional function to override Dir default values.
type Options func(*options)

// WithLogger sets the logger of the directory.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New creates a fresh uniquely named directory under parent.
func New(fsys afero.Fs, parent string, args ...Options) (d *Dir, err error) {
	defer decorate.OnError(&err, "could not create staging directory")

	opts := options{
		log:  slog.Default(),
		name: uuid.NewString,
	}
	for _, opt := range args {
		opt(&opts)
	}

	root := filepath.Join(parent, opts.name())
	if _, err := fsys.Stat(root); err == nil {
		return nil, fmt.Errorf("%w: %s already exists", ErrIO, root)
	}
	if err := fsys.MkdirAll(root, 0750); err != nil {
		return nil, errors.Join(ErrIO, err)
	}
	opts.log.Debug("Created staging directory", "path", root)

	return &Dir{
		fs:     fsys,
		root:   root,
		log:    opts.log,
		assets: make(map[string]map[string]Asset),
	}, nil
}

// Root returns the path of the directory.
func (d *Dir) Root() string {
	return d.root
}

// Fs returns the filesystem the directory lives on.
func (d *Dir) Fs() afero.Fs {
	return d.fs
}

// Path returns the path of file in the category sub-directory.
func (d *Dir) Path(category, file string) string {
	return filepath.Join(d.root, category, file)
}

// Rel returns path relative to the root of the directory, with forward slashes.
func (d *Dir) Rel(path string) (string, error) {
	rel, err := filepath.Rel(d.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not in the staging directory", path)
	}
	return filepath.ToSlash(rel), nil
}

// WriteFile atomically writes data to name, relative to the root of the directory.
func (d *Dir) WriteFile(name string, data []byte) (string, error) {
	path := filepath.Join(d.root, name)
	if err := fileutils.AtomicWrite(d.fs, path, data); err != nil {
		return "", errors.Join(ErrIO, err)
	}
	return path, nil
}

// Finalize renames the file at path to <hash><ext> in the same folder and registers it
// as the asset name of category.
// An already existing target holds the same bytes and is reused.
func (d *Dir) Finalize(category, name, path string) (a Asset, err error) {
	defer decorate.OnError(&err, "could not finalize %s/%s", category, name)

	hash, err := hasher.File(d.fs, path)
	if err != nil {
		return Asset{}, err
	}

	target := filepath.Join(filepath.Dir(path), hash+filepath.Ext(path))
	if target != path {
		if fileutils.Exists(d.fs, target) {
			d.log.Debug("Asset already staged, reusing it", "category", category, "name", name, "hash", hash)
			if err := d.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return Asset{}, errors.Join(ErrIO, err)
			}
		} else if err := d.fs.Rename(path, target); err != nil {
			return Asset{}, errors.Join(ErrIO, err)
		}
	}

	a = Asset{Category: category, Name: name, Path: target, Hash: hash}
	d.Register(a)
	return a, nil
}

// Register records a as the asset a.Name of a.Category, replacing any previous one.
func (d *Dir) Register(a Asset) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.assets[a.Category]
	if !ok {
		m = make(map[string]Asset)
		d.assets[a.Category] = m
	}
	m[a.Name] = a
}

// Lookup returns the registered asset name of category.
func (d *Dir) Lookup(category, name string) (Asset, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.assets[category][name]
	return a, ok
}

// Assets returns the registered assets of category, sorted by name.
func (d *Dir) Assets(category string) []Asset {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r := make([]Asset, 0, len(d.assets[category]))
	for _, a := range d.assets[category] {
		r = append(r, a)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Name < r[j].Name })
	return r
}

// Remove deletes the directory and everything in it. Calling it again is a no-op.
func (d *Dir) Remove() error {
	if err := fileutils.RemoveAll(d.fs, d.root); err != nil {
		return errors.Join(ErrIO, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.assets = make(map[string]map[string]Asset)
	d.log.Debug("Removed staging directory", "path", d.root)
	return nil
}
