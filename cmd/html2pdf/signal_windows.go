//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext derives a context that ends on Ctrl-C, giving in-flight
// conversions a chance to stop cleanly before the browser is torn down.
// Windows has no SIGTERM, so the interrupt is the only hook wired up.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
