package html2pdf

import "runtime"

// Concurrency sizing constants.
const (
	// MinSessions ensures at least one conversion can run.
	MinSessions = 1

	// MaxSessions caps simultaneous tabs to limit browser memory.
	MaxSessions = 8

	// cpuDivisor leaves headroom for Chrome's own renderer processes.
	cpuDivisor = 2
)

// ResolveConcurrency determines how many conversions should run at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveConcurrency(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinSessions {
		return MinSessions
	}
	if n > MaxSessions {
		return MaxSessions
	}
	return n
}
