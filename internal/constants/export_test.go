package constants

// WithBaseDir overrides the base directory function used to compute default paths.
func WithBaseDir(baseDir func() (string, error)) option {
	return func(o *options) {
		o.baseDir = baseDir
	}
}
