package html2pdf

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLogger_NilSafety(t *testing.T) {
	t.Parallel()

	if l := newLogger(nil); l != nil {
		t.Error("newLogger(nil) != nil, want nil logger")
	}

	var l *logger
	l.printf("must not panic: %d", 42)
}

func TestLogger_ConcurrentLinesStayIntact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := newLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.printf("conversion finished")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "conversion finished") {
			t.Errorf("interleaved line: %q", line)
		}
	}
}
