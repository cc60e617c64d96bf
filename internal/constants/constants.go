// Package constants is responsible for defining the constants used in the application.
// It also provides utility functions to get the default configuration, data and saves paths.
package constants

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

var (
	// Version is the version of the application.
	Version = "Dev"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "osa-extractor"

	// DefaultAppFolder is the name of the default root folder.
	DefaultAppFolder = "osa-extractor"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// DefaultServerURL is the default base URL of the synchronization server.
	DefaultServerURL = "https://osa.osallek.fr"

	// DefaultResponseTimeout is how long the server is waited for on each request.
	DefaultResponseTimeout = 5 * time.Minute

	// DefaultSaveExtension is the extension of the save exports read by the extractor.
	DefaultSaveExtension = ".json"

	// IdentityFileName is the name of the file holding the client identifier.
	IdentityFileName = "client.toml"

	// HistoryFileName is the name of the local submission history database.
	HistoryFileName = "history.db"

	// SnapshotFileName is the name of the serialized snapshot inside the staging directory.
	SnapshotFileName = "save.json"

	// AssetsArchiveName is the name of the asset bundle built inside the staging directory.
	AssetsArchiveName = "assets.zip"

	// AssetExt is the extension of every derived asset.
	AssetExt = ".png"

	// DefaultWorkers is the default number of concurrent per-entity workers.
	DefaultWorkers = 8

	// DefaultMaxImageSize is the default maximum edge, in pixels, of a derived asset.
	DefaultMaxImageSize = 512

	// DefaultLocale is the locale used for progress labels when none is configured.
	DefaultLocale = "en"
)

type options struct {
	baseDir func() (string, error)
}

type option func(*options)

// GetDefaultConfigPath is the default path to the configuration directory.
func GetDefaultConfigPath(opts ...option) string {
	o := options{baseDir: os.UserConfigDir}
	for _, opt := range opts {
		opt(&o)
	}

	return filepath.Join(getBaseDir(o.baseDir), DefaultAppFolder)
}

// GetDefaultDataPath is the default path to the directory holding the client identity and history.
func GetDefaultDataPath(opts ...option) string {
	o := options{baseDir: os.UserCacheDir}
	for _, opt := range opts {
		opt(&o)
	}

	return filepath.Join(getBaseDir(o.baseDir), DefaultAppFolder)
}

// GetDefaultSavesPath is the default path to the directory scanned for saves.
func GetDefaultSavesPath(opts ...option) string {
	o := options{baseDir: os.UserHomeDir}
	for _, opt := range opts {
		opt(&o)
	}

	return filepath.Join(getBaseDir(o.baseDir), "Documents", "Paradox Interactive", "Europa Universalis IV", "save games")
}

// getBaseDir is a helper function to handle the case where the baseDir function returns an error, and instead return an empty string.
func getBaseDir(baseDirFunc func() (string, error)) string {
	dir, err := baseDirFunc()
	if err != nil {
		return ""
	}
	return dir
}
