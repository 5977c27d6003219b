package html2pdf

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-html2pdf/internal/process"
)

// markerEnv tags every launched Chrome process so teardown can tell this
// library's processes apart from unrelated ones sharing the executable
// name, and so a crashed launch's leftover children can be swept up by
// marker rather than by name.
const markerEnv = "GO_HTML2PDF_INSTANCE"

// devToolsPrefix is the stderr line Chrome prints once the debugger socket
// is listening. The suffix is the browser-level websocket URL.
const devToolsPrefix = "DevTools listening on "

const (
	defaultStartupTimeout = 30 * time.Second

	// stopGrace is how long Stop waits after the graceful signal before
	// force-killing the process tree.
	stopGrace = 2 * time.Second
)

// Chrome owns exactly one headless Chrome process end to end: argument
// assembly, launch, the startup handshake, liveness checks, and forced
// teardown of the tagged process tree.
//
// One Chrome instance is shared by any number of concurrent conversions;
// each conversion opens its own Session against the announced debugger
// endpoint. Start/Stop transitions are mutex-guarded, everything else is
// safe to call concurrently once started. Construct it explicitly and pass
// it around; lifetime is caller-controlled, there is no singleton.
type Chrome struct {
	// Launch configuration, write-once-before-start.
	args           *LaunchArguments
	executable     string
	startupTimeout time.Duration
	userDataDir    string

	mu        sync.Mutex
	cmd       *exec.Cmd
	marker    string
	wsURL     string
	debugAddr string // host:port of the HTTP debug endpoint
	exited    chan struct{}
	tail      *stderrTail
}

// ChromeOption configures a Chrome before it is created.
type ChromeOption func(*chromeConfig)

// chromeConfig collects option values until NewChrome assembles the frozen
// argument list from them.
type chromeConfig struct {
	executable     string
	startupTimeout time.Duration
	windowSize     WindowSize
	width, height  int
	proxyServer    string
	proxyBypass    string
	proxyPACURL    string
	userAgent      string
	userDataDir    string
}

// WithExecutable overrides executable resolution with an explicit path.
func WithExecutable(path string) ChromeOption {
	return func(c *chromeConfig) { c.executable = path }
}

// WithStartupTimeout bounds the wait for the DevTools announcement.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithStartupTimeout(d time.Duration) ChromeOption {
	if d <= 0 {
		panic("html2pdf: WithStartupTimeout duration must be positive")
	}
	return func(c *chromeConfig) { c.startupTimeout = d }
}

// WithWindowSize selects one of the named viewport resolutions.
func WithWindowSize(ws WindowSize) ChromeOption {
	return func(c *chromeConfig) { c.windowSize = ws }
}

// WithWindowDimensions sets an explicit viewport width and height in pixels.
func WithWindowDimensions(width, height int) ChromeOption {
	return func(c *chromeConfig) { c.width, c.height = width, height }
}

// WithProxyServer routes page traffic through the given proxy.
func WithProxyServer(server string) ChromeOption {
	return func(c *chromeConfig) { c.proxyServer = server }
}

// WithProxyBypassList exempts the given host patterns from the proxy.
func WithProxyBypassList(list string) ChromeOption {
	return func(c *chromeConfig) { c.proxyBypass = list }
}

// WithProxyPACURL points Chrome at a proxy auto-config script.
func WithProxyPACURL(pacURL string) ChromeOption {
	return func(c *chromeConfig) { c.proxyPACURL = pacURL }
}

// WithUserAgent overrides the browser's user agent string.
func WithUserAgent(ua string) ChromeOption {
	return func(c *chromeConfig) { c.userAgent = ua }
}

// WithUserDataDir uses an existing directory as the browser profile. The
// directory must exist; Start fails with ErrDirectoryNotFound otherwise.
func WithUserDataDir(dir string) ChromeOption {
	return func(c *chromeConfig) { c.userDataDir = dir }
}

// NewChrome creates a supervisor for one headless Chrome process. The
// process is not launched until Start (or the first conversion) needs it.
func NewChrome(opts ...ChromeOption) (*Chrome, error) {
	cfg := &chromeConfig{
		startupTimeout: defaultStartupTimeout,
		windowSize:     WindowSizeHD,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	width, height := cfg.width, cfg.height
	if width == 0 && height == 0 {
		dims, ok := windowDimensions[cfg.windowSize]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWindowSize, cfg.windowSize)
		}
		width, height = dims[0], dims[1]
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidWindowSize, width, height)
	}

	c := &Chrome{
		args:           NewLaunchArguments(),
		executable:     cfg.executable,
		startupTimeout: cfg.startupTimeout,
		userDataDir:    cfg.userDataDir,
	}

	set := func(name, value string) {
		// Names are compile-time constants here; Set cannot fail before freeze.
		_ = c.args.Set(name, value)
	}
	set("--headless", "")
	set("--disable-gpu", "")
	set("--hide-scrollbars", "")
	set("--mute-audio", "")
	set("--disable-background-networking", "")
	set("--disable-background-timer-throttling", "")
	set("--disable-extensions", "")
	set("--disable-sync", "")
	set("--disable-translate", "")
	set("--disable-crash-reporter", "")
	set("--metrics-recording-only", "")
	set("--no-first-run", "")
	set("--remote-debugging-port", "0") // OS-assigned
	set("--window-size", fmt.Sprintf("%d,%d", width, height))
	if cfg.proxyServer != "" {
		set("--proxy-server", cfg.proxyServer)
	}
	if cfg.proxyBypass != "" {
		set("--proxy-bypass-list", cfg.proxyBypass)
	}
	if cfg.proxyPACURL != "" {
		set("--proxy-pac-url", cfg.proxyPACURL)
	}
	if cfg.userAgent != "" {
		set("--user-agent", cfg.userAgent)
	}
	if cfg.userDataDir != "" {
		set("--user-data-dir", cfg.userDataDir)
	}

	return c, nil
}

// Args exposes the launch argument set so callers can add flags before the
// first Start. After launch the set is frozen and Set fails.
func (c *Chrome) Args() *LaunchArguments {
	return c.args
}

// Start launches the browser if it is not already running and blocks until
// the debugger endpoint has been announced on stderr, the process exits
// prematurely (ErrLaunchFailed), or the startup timeout elapses.
//
// Safe to call from any number of goroutines; the running-check and launch
// are one atomic region, so exactly one call performs the OS launch and
// the rest are cheap no-ops.
func (c *Chrome) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runningLocked() {
		return nil
	}
	c.clearLocked()
	return c.launchLocked()
}

// EnsureRunning starts the browser if needed. Idempotent convenience.
func (c *Chrome) EnsureRunning() error {
	return c.Start()
}

// IsRunning re-checks process liveness against the OS rather than trusting
// a cached flag; the process can die asynchronously at any point.
func (c *Chrome) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runningLocked()
}

// DebuggerURL returns the announced browser websocket URL, or "" before a
// successful Start.
func (c *Chrome) DebuggerURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wsURL
}

// Stop terminates the browser: graceful signal first, then a forced kill
// of the process group plus a sweep of every process carrying this
// instance's marker. Tolerates an already-gone process and always clears
// the handle. Idempotent.
func (c *Chrome) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return nil
	}

	if c.runningLocked() {
		gracefulSignal(c.cmd.Process)
		select {
		case <-c.exited:
		case <-time.After(stopGrace):
		}
		process.KillProcessGroup(c.cmd.Process.Pid)
	}
	process.KillMarked(markerEnv, c.marker)

	c.clearLocked()
	return nil
}

// endpoint hands a session what it needs to attach: the HTTP debug address
// and the exit signal that turns pending calls into ErrBrowserLost.
func (c *Chrome) endpoint() (addr string, exited <-chan struct{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.runningLocked() {
		return "", nil, fmt.Errorf("%w: browser is not running", ErrSessionOpen)
	}
	return c.debugAddr, c.exited, nil
}

// runningLocked reports liveness. Caller holds c.mu.
func (c *Chrome) runningLocked() bool {
	if c.cmd == nil {
		return false
	}
	select {
	case <-c.exited:
		return false
	default:
	}
	return process.Alive(c.cmd.Process.Pid)
}

// clearLocked drops the handle of a stopped or crashed process. Caller
// holds c.mu.
func (c *Chrome) clearLocked() {
	c.cmd = nil
	c.marker = ""
	c.wsURL = ""
	c.debugAddr = ""
	c.exited = nil
	c.tail = nil
}

// launchLocked performs the actual OS launch and startup handshake. Caller
// holds c.mu.
func (c *Chrome) launchLocked() error {
	exe, err := resolveExecutable(c.executable)
	if err != nil {
		return err
	}
	if c.userDataDir != "" {
		info, statErr := os.Stat(c.userDataDir)
		if statErr != nil || !info.IsDir() {
			return fmt.Errorf("%w: user data dir %s", ErrDirectoryNotFound, c.userDataDir)
		}
	}

	c.args.freeze()
	marker := uuid.NewString()

	cmd := exec.Command(exe, c.args.List()...) // #nosec G204 -- executable resolved from a fixed search order, arguments frozen
	cmd.Env = append(os.Environ(), markerEnv+"="+marker)
	cmd.Stdout = io.Discard
	setProcAttributes(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	announced := make(chan string, 1)
	tail := newStderrTail()
	go watchStderr(stderr, announced, tail)

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	startup := NewCountdownTimer()
	_ = startup.Start(c.startupTimeout)
	defer startup.Cancel()

	select {
	case wsURL := <-announced:
		u, parseErr := url.Parse(wsURL)
		if parseErr != nil || u.Host == "" {
			process.KillProcessGroup(cmd.Process.Pid)
			process.KillMarked(markerEnv, marker)
			return fmt.Errorf("%w: malformed endpoint announcement %q", ErrLaunchFailed, wsURL)
		}
		c.cmd = cmd
		c.marker = marker
		c.wsURL = wsURL
		c.debugAddr = u.Host
		c.exited = exited
		c.tail = tail
		return nil

	case <-exited:
		process.KillMarked(markerEnv, marker) // sweep children the dead launch left behind
		return fmt.Errorf("%w: process exited before announcing its endpoint: %s",
			ErrLaunchFailed, tail.String())

	case <-startup.Done():
		process.KillProcessGroup(cmd.Process.Pid)
		process.KillMarked(markerEnv, marker)
		return fmt.Errorf("%w: no endpoint announcement within %v: %s",
			ErrLaunchFailed, c.startupTimeout, tail.String())
	}
}

// watchStderr scans the diagnostic stream line by line, forwards the
// endpoint announcement once, and keeps draining so the process never
// blocks on a full pipe.
func watchStderr(r io.Reader, announced chan<- string, tail *stderrTail) {
	scanner := bufio.NewScanner(r)
	sent := false
	for scanner.Scan() {
		line := scanner.Text()
		tail.add(line)
		if !sent {
			if wsURL, ok := parseDevToolsLine(line); ok {
				announced <- wsURL
				sent = true
			}
		}
	}
}

// parseDevToolsLine extracts the websocket URL from the startup
// announcement line.
func parseDevToolsLine(line string) (string, bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(line), devToolsPrefix)
	if !found || rest == "" {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// stderrTail keeps the last few diagnostic lines for launch-failure errors.
type stderrTail struct {
	mu    sync.Mutex
	lines []string
}

const stderrTailSize = 8

func newStderrTail() *stderrTail {
	return &stderrTail{}
}

func (t *stderrTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > stderrTailSize {
		t.lines = t.lines[len(t.lines)-stderrTailSize:]
	}
}

func (t *stderrTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == 0 {
		return "(no diagnostic output)"
	}
	return strings.Join(t.lines, " | ")
}

// resolveExecutable finds the Chrome binary using a deterministic search
// order: explicit override, the directory of the running binary, a set of
// well-known installation paths, and finally PATH.
func resolveExecutable(override string) (string, error) {
	if override != "" {
		if isExecutableFile(override) {
			return override, nil
		}
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, override)
	}

	if self, err := os.Executable(); err == nil {
		dir := filepath.Dir(self)
		for _, name := range executableNames() {
			p := filepath.Join(dir, name)
			if isExecutableFile(p) {
				return p, nil
			}
		}
	}

	for _, p := range wellKnownPaths() {
		if isExecutableFile(p) {
			return p, nil
		}
	}

	for _, name := range executableNames() {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: install Chrome or Chromium, or use WithExecutable", ErrExecutableNotFound)
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// executableNames lists the binary names to probe, most common first.
func executableNames() []string {
	if runtime.GOOS == "windows" {
		return []string{"chrome.exe", "msedge.exe"}
	}
	return []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome"}
}

// wellKnownPaths lists the standard installation locations per platform.
func wellKnownPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		var paths []string
		for _, root := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if root == "" {
				continue
			}
			paths = append(paths, filepath.Join(root, "Google", "Chrome", "Application", "chrome.exe"))
		}
		return paths
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/opt/google/chrome/chrome",
		}
	}
}
