// Package hasher computes the content digests used to name and deduplicate every derived asset.
package hasher

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// ErrHashUnavailable is returned when the input to hash is missing or unreadable.
// Callers treat it as a soft failure unless the hash names a reference image.
var ErrHashUnavailable = errors.New("hash unavailable")

// Reader returns the upper-case hexadecimal SHA-256 digest of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, bufio.NewReaderSize(r, 8192)); err != nil {
		return "", errors.Join(ErrHashUnavailable, err)
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

// Bytes returns the upper-case hexadecimal SHA-256 digest of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// File returns the digest of the file at path.
// A missing, unreadable or non regular file returns ErrHashUnavailable.
func File(fsys afero.Fs, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrHashUnavailable)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		return "", errors.Join(ErrHashUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrHashUnavailable, path)
	}

	f, err := fsys.Open(path)
	if err != nil {
		return "", errors.Join(ErrHashUnavailable, err)
	}
	defer f.Close()

	return Reader(f)
}
