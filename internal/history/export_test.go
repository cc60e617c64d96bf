package history

import "time"

// WithNow sets the clock dating new records.
func WithNow(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}
