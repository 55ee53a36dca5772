// Package goroutine launches goroutines whose panics are logged instead of
// crashing the process.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"bizdesk/internal/shared/logger"
)

// Go runs fn on a new goroutine. The returned channel receives fn's error, or
// an error describing a recovered panic, and is then closed. A nil result
// only closes the channel.
func Go(log logger.Interface, name string, fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
				done <- fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		if err := fn(); err != nil {
			done <- err
		}
	}()
	return done
}
