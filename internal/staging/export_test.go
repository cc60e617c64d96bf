package staging

// WithName overrides the random name of the directory.
func WithName(name string) Options {
	return func(o *options) {
		o.name = func() string { return name }
	}
}
