// Package signal ties command lifetimes to process signals.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals cancel a NotifyContext.
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// NotifyContext returns a copy of parent that is cancelled on SIGINT or
// SIGTERM. Call stop to release the signal handler.
func NotifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
