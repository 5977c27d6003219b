package cdp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// endpointTimeout bounds the HTTP calls against the debugger endpoint.
// These are loopback requests; anything slower means the browser is gone.
const endpointTimeout = 10 * time.Second

// ErrEndpoint indicates a failed HTTP call against the debugger endpoint.
var ErrEndpoint = errors.New("debugger endpoint request failed")

var endpointClient = &http.Client{Timeout: endpointTimeout}

// Target describes a tab entry as returned by the debugger's HTTP /json
// endpoints.
type Target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	URL                  string `json:"url"`
	Title                string `json:"title,omitempty"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// NewTarget creates a fresh about:blank tab on the browser listening at
// addr (host:port) and returns its identity, including the websocket URL
// to attach a protocol session to.
func NewTarget(addr string) (Target, error) {
	endpoint := (&url.URL{
		Scheme:   "http",
		Host:     addr,
		Path:     "/json/new",
		RawQuery: "url=" + url.QueryEscape("about:blank"),
	}).String()

	// Chrome 111+ requires PUT; older builds accepted GET and answer 405
	// to PUT, so fall back once.
	body, err := endpointDo(http.MethodPut, endpoint)
	if errors.Is(err, errMethodNotAllowed) {
		body, err = endpointDo(http.MethodGet, endpoint)
	}
	if err != nil {
		return Target{}, err
	}

	var target Target
	if err := json.Unmarshal(body, &target); err != nil {
		return Target{}, fmt.Errorf("%w: decoding /json/new reply: %v", ErrEndpoint, err)
	}
	if target.WebSocketDebuggerURL == "" {
		return Target{}, fmt.Errorf("%w: /json/new reply carries no websocket URL", ErrEndpoint)
	}
	return target, nil
}

// CloseTarget asks the browser to dispose of a tab. Best-effort: the
// browser may already be gone, which is not the caller's problem.
func CloseTarget(addr, targetID string) error {
	endpoint := (&url.URL{
		Scheme: "http",
		Host:   addr,
		Path:   "/json/close/" + targetID,
	}).String()
	_, err := endpointDo(http.MethodGet, endpoint)
	return err
}

// errMethodNotAllowed signals the PUT→GET fallback in NewTarget.
var errMethodNotAllowed = errors.New("method not allowed")

func endpointDo(method, endpoint string) ([]byte, error) {
	req, err := http.NewRequest(method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	resp, err := endpointClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading reply: %v", ErrEndpoint, err)
	}
	if resp.StatusCode == http.StatusMethodNotAllowed {
		return nil, errMethodNotAllowed
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s returned %s", ErrEndpoint, method, endpoint, resp.Status)
	}
	return body, nil
}
