package hasher_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osallek/osa-extractor/internal/hasher"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256("abc")
const abcDigest = "BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD"

func TestFile(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		path    string
		isDir   bool

		want    string
		wantErr bool
	}{
		"Known digest": {content: "abc", want: abcDigest},
		"Empty file":   {content: "", want: "E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855"},

		"Missing file":     {path: "missing.png", wantErr: true},
		"Empty path":       {path: "-", wantErr: true},
		"Path is a folder": {isDir: true, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			path := filepath.Join("stage", "file.png")
			switch {
			case tc.isDir:
				require.NoError(t, fsys.MkdirAll(path, 0750), "Setup: MkdirAll should not return an error")
			case tc.path == "-":
				path = ""
			case tc.path != "":
				path = tc.path
			default:
				require.NoError(t, afero.WriteFile(fsys, path, []byte(tc.content), 0600), "Setup: WriteFile should not return an error")
			}

			got, err := hasher.File(fsys, path)
			if tc.wantErr {
				require.ErrorIs(t, err, hasher.ErrHashUnavailable, "File should return ErrHashUnavailable")
				return
			}
			require.NoError(t, err, "File should not return an error")
			assert.Equal(t, tc.want, got, "File should return the expected digest")
		})
	}
}

func TestDigestEquality(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "a", []byte("same bytes"), 0600), "Setup: WriteFile should not return an error")
	require.NoError(t, afero.WriteFile(fsys, "b", []byte("same bytes"), 0600), "Setup: WriteFile should not return an error")
	require.NoError(t, afero.WriteFile(fsys, "c", []byte("other bytes"), 0600), "Setup: WriteFile should not return an error")

	a1, err := hasher.File(fsys, "a")
	require.NoError(t, err)
	a2, err := hasher.File(fsys, "a")
	require.NoError(t, err)
	b, err := hasher.File(fsys, "b")
	require.NoError(t, err)
	c, err := hasher.File(fsys, "c")
	require.NoError(t, err)

	assert.Equal(t, a1, a2, "Hashing the same file twice should be deterministic")
	assert.Equal(t, a1, b, "Identical bytes should give identical digests")
	assert.NotEqual(t, a1, c, "Different bytes should give different digests")
	assert.Equal(t, hasher.Bytes([]byte("same bytes")), a1, "Bytes and File should agree")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestReader(t *testing.T) {
	t.Parallel()

	got, err := hasher.Reader(strings.NewReader("abc"))
	require.NoError(t, err, "Reader should not return an error")
	assert.Equal(t, abcDigest, got)

	_, err = hasher.Reader(failingReader{})
	require.ErrorIs(t, err, hasher.ErrHashUnavailable, "Reader should wrap read errors")
}
