// Package goroutine guards background work against panics.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/orris-inc/warden/internal/shared/logger"
)

// Recover logs a panic raised by the task called name. Use it deferred:
//
//	defer goroutine.Recover(log, "session-prune")
func Recover(log logger.Interface, name string) {
	r := recover()
	if r == nil {
		return
	}
	log.Errorw("background task panicked",
		"task", name,
		"panic", fmt.Sprintf("%v", r),
		"stack", string(debug.Stack()),
	)
}

// SafeGo runs fn on its own goroutine under Recover.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer Recover(log, name)
		fn()
	}()
}
