package html2pdf

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// logger writes timestamped progress lines to a caller-provided sink.
// Concurrent conversions share one logger, so writes are serialized to keep
// lines intact. A nil logger or nil sink discards everything.
type logger struct {
	mu  sync.Mutex
	out io.Writer
}

func newLogger(out io.Writer) *logger {
	if out == nil {
		return nil
	}
	return &logger{out: out}
}

// printf writes one formatted line. Safe on a nil logger.
func (l *logger) printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s "+format+"\n", append([]any{time.Now().Format("15:04:05.000")}, args...)...)
}
