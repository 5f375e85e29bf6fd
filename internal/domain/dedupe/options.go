package dedupe

// Option configures a ring deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds how many request ids are remembered. When the window is
// full the oldest id is forgotten. A value <= 0 disables the bound.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
