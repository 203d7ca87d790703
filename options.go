package alloc

// Option configures an allocator at construction.
type Option func(*config)

type config struct {
	layers           []Layer
	registry         *Registry
	noGlobal         bool
	initialBlockSize uintptr
}

func defaultConfig() config {
	return config{initialBlockSize: DefaultBlockSize}
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLayers attaches local layers. They run in the given order, before
// any global layer.
func WithLayers(layers ...Layer) Option {
	return func(c *config) {
		for _, l := range layers {
			contract(l != nil, "nil layer")
		}
		c.layers = append(c.layers, layers...)
	}
}

// WithRegistry makes the allocator consult r for global layers instead of
// the process-wide registry.
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithoutGlobalLayers makes the allocator ignore global layers entirely.
// Allocators serving layer bookkeeping use it to avoid recursion.
func WithoutGlobalLayers() Option {
	return func(c *config) {
		c.noGlobal = true
	}
}

// WithInitialBlockSize sets the size of an arena's first block.
// Values of zero keep DefaultBlockSize.
func WithInitialBlockSize(n uintptr) Option {
	return func(c *config) {
		if n > 0 {
			c.initialBlockSize = n
		}
	}
}
