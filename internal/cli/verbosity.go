package cli

import (
	"io"
	"log/slog"

	"github.com/osallek/osa-extractor/internal/constants"
)

// Level returns the log level selected by count occurrences of the -v flag.
func Level(count int) slog.Level {
	switch {
	case count <= 0:
		return constants.DefaultLogLevel
	case count == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// SetVerbosity sets the level of the default logger from the -v flag count.
func SetVerbosity(count int) {
	slog.SetLogLoggerLevel(Level(count))
}

// SetSlog installs the default logger.
//
// With jsonLogs, records are written to w as JSON, tagged with the command name, and carry their
// source location from -vvv on. Otherwise the standard log output is kept and only the level changes.
func SetSlog(w io.Writer, count int, jsonLogs bool) {
	if !jsonLogs {
		SetVerbosity(count)
		return
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: Level(count), AddSource: count > 2})
	slog.SetDefault(slog.New(h).With("app", constants.CmdName))
}
