package alloc

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

// Logger returns the package logger. It is a no-op logger until SetLogger
// installs another one.
func Logger() *zap.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// SetLogger installs the package logger. Passing nil restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// LogLayer logs every request it forwards at debug level.
type LogLayer struct {
	log *zap.Logger
}

// NewLogLayer returns a layer writing to l, or to Logger() when l is nil.
func NewLogLayer(l *zap.Logger) *LogLayer {
	return &LogLayer{log: l}
}

func (ll *LogLayer) logger() *zap.Logger {
	if ll.log != nil {
		return ll.log
	}
	return Logger()
}

func (ll *LogLayer) Alloc(ex *Executor, l Layout) (unsafe.Pointer, error) {
	p, err := ex.Alloc(l)
	ll.logger().Debug("alloc",
		zap.String("allocator", targetName(ex)),
		zap.Uintptr("size", l.Size),
		zap.Uintptr("align", l.Align),
		zap.Uintptr("ptr", uintptr(p)),
		zap.Error(err))
	return p, err
}

func (ll *LogLayer) Dealloc(ex *Executor, l Layout, p unsafe.Pointer) {
	ll.logger().Debug("dealloc",
		zap.String("allocator", targetName(ex)),
		zap.Uintptr("size", l.Size),
		zap.Uintptr("align", l.Align),
		zap.Uintptr("ptr", uintptr(p)))
	ex.Dealloc(l, p)
}

func (ll *LogLayer) Realloc(ex *Executor, from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	np, err := ex.Realloc(from, to, p)
	ll.logger().Debug("realloc",
		zap.String("allocator", targetName(ex)),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Uintptr("ptr", uintptr(p)),
		zap.Uintptr("new_ptr", uintptr(np)),
		zap.Error(err))
	return np, err
}

func (ll *LogLayer) Reset(ex *Executor) {
	ll.logger().Debug("reset", zap.String("allocator", targetName(ex)))
	ex.Reset()
}

func (ll *LogLayer) LegacyAlloc(ex *Executor, size uintptr) (unsafe.Pointer, error) {
	p, err := ex.LegacyAlloc(size)
	ll.logger().Debug("legacy alloc",
		zap.String("allocator", targetName(ex)),
		zap.Uintptr("size", size),
		zap.Uintptr("ptr", uintptr(p)),
		zap.Error(err))
	return p, err
}

func (ll *LogLayer) LegacyDealloc(ex *Executor, p unsafe.Pointer) {
	ll.logger().Debug("legacy dealloc",
		zap.String("allocator", targetName(ex)),
		zap.Uintptr("ptr", uintptr(p)))
	ex.LegacyDealloc(p)
}

func (ll *LogLayer) LegacyRealloc(ex *Executor, size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	np, err := ex.LegacyRealloc(size, p)
	ll.logger().Debug("legacy realloc",
		zap.String("allocator", targetName(ex)),
		zap.Uintptr("size", size),
		zap.Uintptr("ptr", uintptr(p)),
		zap.Uintptr("new_ptr", uintptr(np)),
		zap.Error(err))
	return np, err
}

func targetName(ex *Executor) string {
	if n, ok := ex.Target().(interface{ Name() string }); ok {
		return n.Name()
	}
	return "unknown"
}
