// Package extractor runs extractions: it parses a save, projects it into a snapshot, submits it
// and uploads the assets the server is missing.
//
// Each extraction runs in its own goroutine and owns a staging directory which is removed
// whatever the outcome.
package extractor

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/game"
	"github.com/osallek/osa-extractor/internal/history"
	"github.com/osallek/osa-extractor/internal/snapshot"
	"github.com/osallek/osa-extractor/internal/uploader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
)

// Error codes reported to observers when the server did not give one.
const (
	CodeCancelled = "CANCELLED"
	CodeDefault   = "DEFAULT_ERROR"
)

// ErrPanic is returned when an extraction panicked.
var ErrPanic = errors.New("extraction panicked")

// Syncer is the client of the synchronization server.
type Syncer interface {
	SubmitSnapshot(ctx context.Context, snap *snapshot.Snapshot) (uploader.Submission, error)
	UploadAssets(ctx context.Context, root string, paths []string, sessionID string) error
}

// Recorder keeps track of successful submissions.
type Recorder interface {
	Add(ctx context.Context, r history.Record) (history.Record, error)
}

// Extractor starts extractions.
type Extractor struct {
	parser  game.Parser
	client  Syncer
	history Recorder

	fs           afero.Fs
	src          afero.Fs
	tempDir      string
	workers      int
	maxImageSize int

	metrics *metrics
	log     *slog.Logger
}

type options struct {
	fs           afero.Fs
	src          afero.Fs
	tempDir      string
	workers      int
	maxImageSize int
	history      Recorder
	registry     prometheus.Registerer
	log          *slog.Logger
}

// Options represents an optional function to override Extractor default values.
type Options func(*options)

// WithFs sets the filesystem of the staging directories.
func WithFs(fsys afero.Fs) Options {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithSourceFs sets the filesystem game images are read from. It defaults to the staging one.
func WithSourceFs(fsys afero.Fs) Options {
	return func(o *options) {
		o.src = fsys
	}
}

// WithTempDir sets the directory staging directories are created in.
func WithTempDir(dir string) Options {
	return func(o *options) {
		o.tempDir = dir
	}
}

// WithWorkers bounds the number of entities processed at the same time.
func WithWorkers(n int) Options {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMaxImageSize sets the longest edge, in pixels, of derived images. 0 disables downscaling.
func WithMaxImageSize(n int) Options {
	return func(o *options) {
		o.maxImageSize = n
	}
}

// WithHistory records every successful submission in r.
func WithHistory(r Recorder) Options {
	return func(o *options) {
		o.history = r
	}
}

// WithRegistry registers the metrics of the extractor on reg.
func WithRegistry(reg prometheus.Registerer) Options {
	return func(o *options) {
		o.registry = reg
	}
}

// WithLogger sets the logger of the extractor.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns an Extractor reading saves with parser and sending them through client.
func New(parser game.Parser, client Syncer, args ...Options) *Extractor {
	opts := options{
		fs:           afero.NewOsFs(),
		tempDir:      os.TempDir(),
		workers:      constants.DefaultWorkers,
		maxImageSize: constants.DefaultMaxImageSize,
		log:          slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}
	if opts.src == nil {
		opts.src = opts.fs
	}

	return &Extractor{
		parser:       parser,
		client:       client,
		history:      opts.history,
		fs:           opts.fs,
		src:          opts.src,
		tempDir:      opts.tempDir,
		workers:      opts.workers,
		maxImageSize: opts.maxImageSize,
		metrics:      newMetrics(opts.registry),
		log:          opts.log,
	}
}

// Start begins the extraction of the save at savePath in the background.
// previousID, when not empty, is the id of an earlier submission the new one replaces.
func (e *Extractor) Start(ctx context.Context, savePath, previousID string) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := newRun(cancel)
	r.setState(Running)

	go func() {
		defer close(r.done)
		defer r.tracker.Close()
		defer cancel()

		res, err := e.run(ctx, r.tracker, savePath, previousID)
		r.finish(res, err)
		e.metrics.runs.WithLabelValues(r.State().String()).Inc()
	}()

	return r
}

// ErrorCode returns the code observers are given for err: the one answered by the server when
// there is one, CodeCancelled for a cancelled extraction, else CodeDefault.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var se *uploader.ServerError
	if errors.As(err, &se) && se.Code != "" {
		return se.Code
	}
	if errors.Is(err, context.Canceled) {
		return CodeCancelled
	}
	return CodeDefault
}
