package rtm

import (
	"iter"
	"runtime"
)

// Steps returns an infinite sequence that calls step once per advance.
// The sequence never ends on its own; callers break out of the range loop.
// Each call to the returned function starts a fresh iteration.
func Steps(step func()) iter.Seq[struct{}] {
	return func(yield func(struct{}) bool) {
		for {
			step()
			if !yield(struct{}{}) {
				return
			}
		}
	}
}

// Borrow lends v to call for the duration of one native invocation. The
// pointer must not be retained by call.
func Borrow[T any](v *T, call func(*T)) {
	call(v)
	runtime.KeepAlive(v)
}
