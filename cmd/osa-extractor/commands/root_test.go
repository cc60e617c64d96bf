package commands

import (
	"testing"

	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageError(t *testing.T) {
	app, err := New()
	require.NoError(t, err)

	// Test when SilenceUsage is true
	app.cmd.SilenceUsage = true
	assert.False(t, app.UsageError())

	// Test when SilenceUsage is false
	app.cmd.SilenceUsage = false
	assert.True(t, app.UsageError())
}

func TestRootCmd(t *testing.T) {
	app, err := New()
	require.NoError(t, err)

	cmd := app.RootCmd()

	assert.NotNil(t, cmd, "Returned root cmd should not be nil")
	assert.Equal(t, constants.CmdName, cmd.Name())
}

func TestFlags(t *testing.T) {
	t.Parallel()

	app, err := New()
	require.NoError(t, err, "Setup: could not create app")
	extractCmd, _, err := app.cmd.Find([]string{"extract"})
	require.NoError(t, err, "Setup: extract command should exist")
	historyCmd, _, err := app.cmd.Find([]string{"history"})
	require.NoError(t, err, "Setup: history command should exist")

	tests := []testutils.CmdTestCase{
		{Name: "verbose", Short: "v", PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "config", PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "json-logs", PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "server-url", Default: constants.DefaultServerURL, PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "response-timeout", Default: "5m0s", PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "saves-dir", Dirname: true, PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "save-extension", Default: constants.DefaultSaveExtension, PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "data-dir", Dirname: true, PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "temp-dir", Dirname: true, PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "locale", Default: constants.DefaultLocale, PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "workers", Default: "8", PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "max-image-size", Default: "512", PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "metrics-file", Filename: true, PersistentFlag: true, BaseCmd: app.cmd},
		{Name: "previous-id", BaseCmd: extractCmd},
		{Name: "update", Short: "u", BaseCmd: extractCmd},
		{Name: "remote", Short: "r", BaseCmd: historyCmd},
		{Name: "limit", Short: "n", BaseCmd: historyCmd},
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			testutils.FlagTestHelper(t, tc)
		})
	}
}
