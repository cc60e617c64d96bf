package fileutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrTooLarge is returned when a JSON document is longer than the allowed limit.
var ErrTooLarge = errors.New("document too large")

// ReadJSON reads the whole of r and unmarshals it into v.
// r must hold a single JSON value. When limit is positive, documents longer than limit bytes are rejected.
func ReadJSON(r io.Reader, v any, limit int64) error {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("error reading JSON document: %w", err)
	}
	if limit > 0 && int64(len(buf)) > limit {
		return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("couldn't parse JSON: %v", err)
	}
	return nil
}
