package testutils

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CmdTestCase describes how a flag of BaseCmd is expected to be declared.
type CmdTestCase struct {
	Name    string
	Short   string
	Default string

	Dirname        bool
	Filename       bool
	PersistentFlag bool
	BaseCmd        *cobra.Command
}

// FlagTestHelper checks that the flag described by tc exists with the expected shorthand,
// default value and shell completion annotations.
func FlagTestHelper(t *testing.T, tc CmdTestCase) {
	t.Helper()

	flags := tc.BaseCmd.Flags()
	if tc.PersistentFlag {
		flags = tc.BaseCmd.PersistentFlags()
	}
	flag := flags.Lookup(tc.Name)
	require.NotNil(t, flag, "Flag %q should be declared", tc.Name)

	assert.Equal(t, tc.Short, flag.Shorthand, "Shorthand of %q should match", tc.Name)
	if tc.Default != "" {
		assert.Equal(t, tc.Default, flag.DefValue, "Default value of %q should match", tc.Name)
	}

	assert.Equal(t, tc.Dirname, hasAnnotation(flag, cobra.BashCompSubdirsInDir), "%q should complete directories only when expected", tc.Name)
	assert.Equal(t, tc.Filename, hasAnnotation(flag, cobra.BashCompFilenameExt), "%q should complete file names only when expected", tc.Name)
}

func hasAnnotation(flag *pflag.Flag, key string) bool {
	_, ok := flag.Annotations[key]
	return ok
}
