package cli_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/osallek/osa-extractor/internal/cli"
	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		count int

		want slog.Level
	}{
		"No flag":        {count: 0, want: constants.DefaultLogLevel},
		"Negative count": {count: -1, want: constants.DefaultLogLevel},
		"Info":           {count: 1, want: slog.LevelInfo},
		"Debug":          {count: 2, want: slog.LevelDebug},
		"More than -vv":  {count: 4, want: slog.LevelDebug},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, cli.Level(tc.count), "Level should match the flag count")
		})
	}
}

//nolint:tparallel // Changes the global default logger.
func TestSetVerbosity(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	for _, pattern := range [][]int{{1}, {0}, {1, 0}, {1, 2}, {1, 2, 0}, {2}} {
		for _, count := range pattern {
			cli.SetVerbosity(count)

			want := cli.Level(count)
			assert.True(t, slog.Default().Enabled(context.Background(), want), "Level %v should be enabled after %v", want, pattern)
			assert.False(t, slog.Default().Enabled(context.Background(), want-1), "Levels below %v should be disabled after %v", want, pattern)
		}
	}
}

//nolint:tparallel // Changes the global default logger.
func TestSetSlogJSON(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	tests := map[string]struct {
		count int

		wantRecord bool
		wantSource bool
	}{
		"Debug is filtered by default": {count: 0},
		"Debug with -vv":               {count: 2, wantRecord: true},
		"Source with -vvv":             {count: 3, wantRecord: true, wantSource: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			cli.SetSlog(&buf, tc.count, true)
			slog.Debug("hello", "key", "value")

			if !tc.wantRecord {
				assert.Empty(t, buf.String(), "Debug record should be filtered out")
				return
			}
			require.NotEmpty(t, buf.String(), "JSON handler should have written the debug record")
			assert.Contains(t, buf.String(), `"msg":"hello"`)
			assert.Contains(t, buf.String(), `"key":"value"`)
			assert.Contains(t, buf.String(), `"app":"`+constants.CmdName+`"`, "Records should carry the command name")
			assert.Equal(t, tc.wantSource, bytes.Contains(buf.Bytes(), []byte(`"source":`)), "Source location should match verbosity")
		})
	}
}
