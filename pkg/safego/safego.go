// Package safego launches goroutines that recover from panics instead of
// crashing the process, logging the stack and continuing.
package safego

import (
	"context"
	"runtime/debug"

	"github.com/jlevy/markform/pkg/logger"
)

// Go runs fn in a new goroutine, recovering any panic and logging it rather
// than letting it propagate. ctx is accepted for symmetry with cancellable
// call sites and may be used by fn; Go itself does not watch it.
func Go(_ context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("safego: recovered panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
