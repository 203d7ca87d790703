package alloc

import (
	"sync"

	"go.uber.org/zap"
)

// Runtime is a complete allocator graph: a global layer registry, a
// general-purpose allocator, a Legacy view of it, and a separate debug
// allocator for bookkeeping.
//
// The process keeps one Runtime for its whole lifetime (see Bootstrap);
// tests build their own with NewRuntime so they never touch it.
type Runtime struct {
	registry *Registry
	system   *System
	legacy   *LegacyAdapter
	debug    *System
}

// NewRuntime builds an isolated runtime. The given layers are registered
// globally on it before any of its allocators exist.
func NewRuntime(layers ...Layer) *Runtime {
	return newRuntime(NewRegistry(), layers)
}

func newRuntime(reg *Registry, layers []Layer) *Runtime {
	for _, l := range layers {
		reg.Add(l)
	}
	system := NewSystem(WithRegistry(reg))
	return &Runtime{
		registry: reg,
		system:   system,
		legacy:   NewLegacyAdapter(system, WithRegistry(reg)),
		// Layers may allocate their own bookkeeping from the debug
		// allocator, so it must not dispatch through them.
		debug: NewSystem(WithoutGlobalLayers(), WithLayers(NewClearLayer())),
	}
}

// Registry returns the runtime's global layer chain.
func (r *Runtime) Registry() *Registry { return r.registry }

// Default returns the general-purpose allocator.
func (r *Runtime) Default() *System { return r.system }

// DefaultLegacy returns the Legacy view of Default.
func (r *Runtime) DefaultLegacy() *LegacyAdapter { return r.legacy }

// Debug returns the bookkeeping allocator. It paints memory on alloc and
// free and ignores global layers.
func (r *Runtime) Debug() *System { return r.debug }

// AddGlobalLayer registers l for every allocator of this runtime.
func (r *Runtime) AddGlobalLayer(l Layer) { r.registry.Add(l) }

var (
	processOnce sync.Once
	process     *Runtime
)

// Bootstrap creates the process runtime, registering layers as global
// layers first. It can succeed once; later calls, or calls after any
// accessor has lazily created the runtime, return ErrAlreadyBootstrapped.
// The process runtime is never torn down.
func Bootstrap(layers ...Layer) error {
	created := false
	processOnce.Do(func() {
		process = newRuntime(&globalRegistry, layers)
		created = true
		Logger().Info("allocator runtime bootstrapped", zap.Int("global_layers", globalRegistry.Len()))
	})
	if !created {
		return ErrAlreadyBootstrapped
	}
	return nil
}

func processRuntime() *Runtime {
	_ = Bootstrap()
	return process
}

// Default returns the process-wide general-purpose allocator.
func Default() *System { return processRuntime().Default() }

// DefaultLegacy returns the process-wide Legacy view of Default.
func DefaultLegacy() *LegacyAdapter { return processRuntime().DefaultLegacy() }

// Debug returns the process-wide bookkeeping allocator.
func Debug() *System { return processRuntime().Debug() }

// AddGlobalLayer registers l for every allocator that uses the process
// registry, which is any allocator not built WithRegistry or
// WithoutGlobalLayers. Register layers during startup, before allocation
// traffic begins. There is no removal.
func AddGlobalLayer(l Layer) { globalRegistry.Add(l) }
