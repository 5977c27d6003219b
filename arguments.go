package html2pdf

import (
	"fmt"
	"strings"
	"sync"
)

// LaunchArguments is an ordered set of unique Chrome command-line flags.
//
// Value-bearing flags are keyed by flag name, so re-setting a flag replaces
// its value instead of appending a duplicate. Once the process has started
// the set is frozen: mutation after launch is rejected, because it could
// not affect the already-running process anyway.
type LaunchArguments struct {
	mu     sync.Mutex
	flags  []string
	index  map[string]int
	frozen bool
}

// NewLaunchArguments returns an empty argument set.
func NewLaunchArguments() *LaunchArguments {
	return &LaunchArguments{index: make(map[string]int)}
}

// Set adds or replaces a flag. An empty value produces a bare flag
// ("--headless"); otherwise name and value are joined with "=".
func (a *LaunchArguments) Set(name, value string) error {
	if name == "" || !strings.HasPrefix(name, "--") {
		return fmt.Errorf("%w: flag name %q must start with --", ErrInvalidArgument, name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return fmt.Errorf("%w: %s", ErrArgumentsFrozen, name)
	}
	arg := name
	if value != "" {
		arg = name + "=" + value
	}
	if i, ok := a.index[name]; ok {
		a.flags[i] = arg
		return nil
	}
	a.index[name] = len(a.flags)
	a.flags = append(a.flags, arg)
	return nil
}

// Has reports whether a flag with the given name is present.
func (a *LaunchArguments) Has(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.index[name]
	return ok
}

// Value returns the value of a value-bearing flag, or "" for bare or
// absent flags.
func (a *LaunchArguments) Value(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.index[name]
	if !ok {
		return ""
	}
	if rest, found := strings.CutPrefix(a.flags[i], name+"="); found {
		return rest
	}
	return ""
}

// List returns the flags in insertion order.
func (a *LaunchArguments) List() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.flags))
	copy(out, a.flags)
	return out
}

// freeze locks the set against further mutation. Called once at launch.
func (a *LaunchArguments) freeze() {
	a.mu.Lock()
	a.frozen = true
	a.mu.Unlock()
}
