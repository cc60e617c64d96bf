// Package identity manages the client identifier sent to the synchronization server.
// The identifier is generated on first use and kept in a toml file, so that the server keeps
// associating submissions with this installation.
package identity

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/fileutils"
	"github.com/spf13/afero"
	"github.com/ubuntu/decorate"
)

// ErrInvalidIdentity is returned when the identity file exists but holds no valid identifier.
var ErrInvalidIdentity = errors.New("invalid identity file")

// Manager reads and creates the identity file.
type Manager struct {
	path string
	fs   afero.Fs
	log  *slog.Logger
	now  func() time.Time
}

// identityFile is the content of the identity file.
type identityFile struct {
	ClientID string    `toml:"client_id"`
	Created  time.Time `toml:"created"`
}

type options struct {
	log *slog.Logger
	now func() time.Time
}

// Options represents an optional function to override Manager default values.
type Options func(*options)

// WithLogger sets the logger of the manager.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns a Manager of the identity file stored in dir.
func New(fsys afero.Fs, dir string, args ...Options) *Manager {
	opts := options{
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Manager{
		path: filepath.Join(dir, constants.IdentityFileName),
		fs:   fsys,
		log:  opts.log,
		now:  opts.now,
	}
}

// Path returns the path of the identity file.
func (m Manager) Path() string {
	return m.path
}

// ClientID returns the client identifier, creating it if it does not exist yet.
// An existing but invalid file is never replaced.
func (m Manager) ClientID() (id string, err error) {
	defer decorate.OnError(&err, "could not get client id")

	f, err := m.read()
	if errors.Is(err, fs.ErrNotExist) {
		f = identityFile{ClientID: uuid.NewString(), Created: m.now().UTC().Truncate(time.Second)}
		if err := f.write(m.fs, m.path); err != nil {
			return "", err
		}
		m.log.Info("Created new client identity", "file", m.path, "clientID", f.ClientID)
		return f.ClientID, nil
	}
	if err != nil {
		return "", err
	}
	return f.ClientID, nil
}

func (m Manager) read() (identityFile, error) {
	var f identityFile
	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return f, err
	}
	if _, err := toml.Decode(string(data), &f); err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if _, err := uuid.Parse(f.ClientID); err != nil {
		return f, fmt.Errorf("%w: client id %q: %v", ErrInvalidIdentity, f.ClientID, err)
	}
	m.log.Debug("Read identity file", "file", m.path, "clientID", f.ClientID)
	return f, nil
}

// write writes the identity file atomically, replacing it if it already exists.
func (f identityFile) write(fsys afero.Fs, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("could not encode identity file: %v", err)
	}
	return fileutils.AtomicWrite(fsys, path, buf.Bytes())
}
