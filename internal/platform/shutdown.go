package platform

import (
	"context"
	"os/signal"
	"sync"
)

// NewShutdownContext returns a context canceled when the process receives one
// of the platform's shutdown signals.
func NewShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

// OnShutdown calls quit once, from its own goroutine, when a shutdown signal
// arrives or parent is canceled. After the returned stop func returns, quit
// is never called.
func OnShutdown(parent context.Context, quit func()) (stop func()) {
	ctx, cancel := NewShutdownContext(parent)
	stopping := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			select {
			case <-stopping:
			default:
				quit()
			}
		case <-stopping:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopping)
			cancel()
		})
		<-done
	}
}
