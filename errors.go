package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocationFailure indicates that a strategy could not satisfy a
	// request: the OS refused a mapping, a fixed buffer is exhausted, or a
	// parent allocator failed. Strategies wrap it with detail; test with
	// errors.Is.
	ErrAllocationFailure = errors.New("alloc: allocation failure")

	// ErrAlreadyBootstrapped is returned by Bootstrap once the process
	// runtime exists.
	ErrAlreadyBootstrapped = errors.New("alloc: runtime already bootstrapped")
)

func allocFailure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAllocationFailure, fmt.Sprintf(format, args...))
}

// contract panics when a precondition is violated. Contract violations are
// programming errors and are not recoverable.
func contract(ok bool, format string, args ...any) {
	if !ok {
		panic("alloc: " + fmt.Sprintf(format, args...))
	}
}
