package constants_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPaths(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		baseDir func() (string, error)

		wantConfig string
		wantData   string
		wantSaves  string
	}{
		"Base dir found": {
			baseDir:    func() (string, error) { return "abc", nil },
			wantConfig: filepath.Join("abc", constants.DefaultAppFolder),
			wantData:   filepath.Join("abc", constants.DefaultAppFolder),
			wantSaves:  filepath.Join("abc", "Documents", "Paradox Interactive", "Europa Universalis IV", "save games"),
		},
		"Base dir error is ignored": {
			baseDir:    func() (string, error) { return "abc", errors.New("error") },
			wantConfig: constants.DefaultAppFolder,
			wantData:   constants.DefaultAppFolder,
			wantSaves:  filepath.Join("Documents", "Paradox Interactive", "Europa Universalis IV", "save games"),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opt := constants.WithBaseDir(tc.baseDir)
			assert.Equal(t, tc.wantConfig, constants.GetDefaultConfigPath(opt), "Unexpected config path")
			assert.Equal(t, tc.wantData, constants.GetDefaultDataPath(opt), "Unexpected data path")
			assert.Equal(t, tc.wantSaves, constants.GetDefaultSavesPath(opt), "Unexpected saves path")
		})
	}
}
