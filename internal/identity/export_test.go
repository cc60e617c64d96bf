package identity

import "time"

// WithNow sets the clock used to date new identities.
func WithNow(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}
