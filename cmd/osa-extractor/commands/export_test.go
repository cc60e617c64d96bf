package commands

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/osallek/osa-extractor/internal/game"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type (
	AppConfig = appConfig
)

// WithParser sets the parser of the extract command.
func WithParser(p game.Parser) Options {
	return func(o *options) {
		o.newParser = func(afero.Fs) game.Parser { return p }
	}
}

// Config returns the configuration of the app.
func (a *App) Config() AppConfig {
	return a.config
}

// SetArgs sets the arguments for the command.
func (a *App) SetArgs(args ...string) {
	a.cmd.SetArgs(args)
}

// SetOut sets where commands write their results.
func (a *App) SetOut(w io.Writer) {
	a.cmd.SetOut(w)
}

// NewForTests creates a new App reading conf, completed with test defaults, as its configuration file.
func NewForTests(t *testing.T, conf *AppConfig, opts []Options, args ...string) *App {
	t.Helper()

	p := GenerateTestConfig(t, conf)
	a, err := New(opts...)
	require.NoError(t, err, "Setup: failed to create app")
	a.cmd.SetArgs(append(args, "--config", p))
	return a
}

// GenerateTestConfig generates a temporary config file for testing.
// Directories which are not set are created under the test temporary directory.
func GenerateTestConfig(t *testing.T, origConf *AppConfig) string {
	t.Helper()

	var conf appConfig
	if origConf != nil {
		conf = *origConf
	}

	if conf.Verbose == 0 {
		conf.Verbose = 2
	}
	if conf.SavesDir == "" {
		conf.SavesDir = t.TempDir()
	}
	if conf.DataDir == "" {
		conf.DataDir = t.TempDir()
	}
	if conf.TempDir == "" {
		conf.TempDir = t.TempDir()
	}
	if conf.SaveExtension == "" {
		conf.SaveExtension = ".json"
	}
	if conf.Locale == "" {
		conf.Locale = "en"
	}
	if conf.ResponseTimeout == 0 {
		conf.ResponseTimeout = 10 * time.Second
	}
	if conf.Workers == 0 {
		conf.Workers = 2
	}

	d, err := yaml.Marshal(conf)
	require.NoError(t, err, "Setup: failed to marshal config for tests")

	confPath := filepath.Join(t.TempDir(), "testconfig.yaml")
	require.NoError(t, os.WriteFile(confPath, d, 0600), "Setup: failed to write config for tests")

	return confPath
}
