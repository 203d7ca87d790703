package alloc

import (
	"unsafe"
)

// isolated keeps an allocator away from the process-wide layer registry.
func isolated(opts ...Option) []Option {
	return append([]Option{WithRegistry(NewRegistry())}, opts...)
}

type call struct {
	op   string
	from Layout
	to   Layout
	size uintptr
}

// recorder is a pass-through layer that logs every request it sees.
type recorder struct {
	PassThrough
	tag   string
	trace *[]string
	calls []call
}

func newRecorder(tag string, trace *[]string) *recorder {
	return &recorder{tag: tag, trace: trace}
}

func (r *recorder) note(c call) {
	r.calls = append(r.calls, c)
	if r.trace != nil {
		*r.trace = append(*r.trace, r.tag)
	}
}

func (r *recorder) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (r *recorder) lastCall(op string) (call, bool) {
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].op == op {
			return r.calls[i], true
		}
	}
	return call{}, false
}

func (r *recorder) Alloc(ex *Executor, l Layout) (unsafe.Pointer, error) {
	r.note(call{op: "alloc", to: l})
	return ex.Alloc(l)
}

func (r *recorder) Dealloc(ex *Executor, l Layout, p unsafe.Pointer) {
	r.note(call{op: "dealloc", from: l})
	ex.Dealloc(l, p)
}

func (r *recorder) Realloc(ex *Executor, from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	r.note(call{op: "realloc", from: from, to: to})
	return ex.Realloc(from, to, p)
}

func (r *recorder) Reset(ex *Executor) {
	r.note(call{op: "reset"})
	ex.Reset()
}

func (r *recorder) LegacyAlloc(ex *Executor, size uintptr) (unsafe.Pointer, error) {
	r.note(call{op: "legacy-alloc", size: size})
	return ex.LegacyAlloc(size)
}

func (r *recorder) LegacyDealloc(ex *Executor, p unsafe.Pointer) {
	r.note(call{op: "legacy-dealloc"})
	ex.LegacyDealloc(p)
}

func (r *recorder) LegacyRealloc(ex *Executor, size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	r.note(call{op: "legacy-realloc", size: size})
	return ex.LegacyRealloc(size, p)
}

func addr(p unsafe.Pointer) uintptr { return uintptr(p) }

func writeSeq(p unsafe.Pointer, n uintptr, seed byte) {
	b := bytesAt(p, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
}

func checkSeq(p unsafe.Pointer, n uintptr, seed byte) bool {
	b := bytesAt(p, n)
	for i := range b {
		if b[i] != seed+byte(i) {
			return false
		}
	}
	return true
}
