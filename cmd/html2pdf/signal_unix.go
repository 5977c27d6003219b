//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyContext derives a context that ends on Ctrl-C or SIGTERM, giving
// in-flight conversions a chance to stop cleanly before the browser is
// torn down. The returned stop function releases the signal hook.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
