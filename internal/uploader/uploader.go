// Package uploader implements the client of the synchronization server.
// It submits snapshots, uploads the assets the server asks for and lists past submissions.
package uploader

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/spf13/afero"
)

var (
	// ErrEmptyClientID is returned when the client identifier is incorrectly an empty string.
	ErrEmptyClientID = errors.New("client id cannot be an empty string")
	// ErrTransport is returned when the server could not be reached or its response could not be read.
	ErrTransport = errors.New("could not reach server")
	// ErrAssetUploadRejected is returned when the server refused an asset bundle.
	ErrAssetUploadRejected = errors.New("asset upload rejected")
)

// ServerError is a structured error answered by the server.
type ServerError struct {
	Status int
	// Code is empty when the server did not explain itself.
	Code string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server rejected request with status %d", e.Status)
	}
	return fmt.Sprintf("server rejected request with status %d: %s", e.Status, e.Code)
}

// Client talks to the synchronization server on behalf of one client id.
type Client struct {
	clientID      string
	baseServerURL string
	http          *http.Client
	fs            afero.Fs
	log           *slog.Logger
}

type options struct {
	baseServerURL   string
	responseTimeout time.Duration
	fs              afero.Fs
	log             *slog.Logger
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithBaseServerURL sets the base server URL of the client.
func WithBaseServerURL(url string) Options {
	return func(o *options) {
		o.baseServerURL = url
	}
}

// WithResponseTimeout sets how long the client waits for the server to answer a request.
// It is the only bound on a request: there are no retries.
func WithResponseTimeout(d time.Duration) Options {
	return func(o *options) {
		o.responseTimeout = d
	}
}

// WithFs sets the file system the asset bundles are read from and written to.
func WithFs(fsys afero.Fs) Options {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithLogger sets the logger of the client.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns a Client identified by clientID.
func New(clientID string, args ...Options) (*Client, error) {
	if clientID == "" {
		return nil, ErrEmptyClientID
	}

	opts := options{
		baseServerURL:   constants.DefaultServerURL,
		responseTimeout: constants.DefaultResponseTimeout,
		fs:              afero.NewOsFs(),
		log:             slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}
	opts.log.Debug("Creating new sync client", "clientID", clientID, "server", opts.baseServerURL)

	return &Client{
		clientID:      clientID,
		baseServerURL: opts.baseServerURL,
		http:          &http.Client{Timeout: opts.responseTimeout},
		fs:            opts.fs,
		log:           opts.log,
	}, nil
}
