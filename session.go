package html2pdf

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alnah/go-html2pdf/internal/cdp"
)

// statusPollInterval is how often WaitForWindowStatus re-reads
// window.status. Short enough that an early status change is observed
// almost immediately.
const statusPollInterval = 10 * time.Millisecond

// Session is one protocol connection to one browser tab.
//
// The wire is asynchronous: requests go out in send order, responses come
// back in any order, and unsolicited events are interleaved. Correctness
// rests entirely on request-id correlation, never on arrival order.
//
// A session is single-owner. It belongs to exactly one conversion and is
// never shared across concurrent conversions; concurrency comes from
// opening one session per conversion against the shared Chrome. The
// internal locks only coordinate the caller with the session's own receive
// loop.
type Session struct {
	conn        *websocket.Conn
	debugAddr   string
	targetID    string
	browserGone <-chan struct{}

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan callResult
	events  map[string]chan json.RawMessage

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error // set before closed is closed
}

type callResult struct {
	result json.RawMessage
	err    error
}

// OpenSession creates a new tab on the shared browser, starting it first
// if necessary, and attaches a protocol session to it.
func (c *Chrome) OpenSession() (*Session, error) {
	if err := c.EnsureRunning(); err != nil {
		return nil, err
	}
	addr, exited, err := c.endpoint()
	if err != nil {
		return nil, err
	}
	return openSessionAt(addr, exited)
}

// openSessionAt attaches to a fresh tab on the debugger at addr. Split out
// from OpenSession so tests can target a synthetic endpoint.
func openSessionAt(addr string, browserGone <-chan struct{}) (*Session, error) {
	target, err := cdp.NewTarget(addr)
	if err != nil {
		select {
		case <-browserGone:
			return nil, fmt.Errorf("%w: %v", ErrBrowserLost, err)
		default:
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionOpen, err)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(target.WebSocketDebuggerURL, nil)
	if err != nil {
		_ = cdp.CloseTarget(addr, target.ID)
		return nil, fmt.Errorf("%w: dialing %s: %v", ErrSessionOpen, target.WebSocketDebuggerURL, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	s := &Session{
		conn:        conn,
		debugAddr:   addr,
		targetID:    target.ID,
		browserGone: browserGone,
		pending:     make(map[int64]chan callResult),
		events:      make(map[string]chan json.RawMessage),
		closed:      make(chan struct{}),
	}
	go s.readLoop()

	// Page events are opt-in; without this, loadEventFired never arrives.
	if _, err := s.call(cdp.MethodPageEnable, nil, nil); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: enabling page events: %v", ErrSessionOpen, err)
	}
	return s, nil
}

// NavigateTo drives the tab to uri and blocks until the page's load event
// fires or navigation fails. On timer expiry the conversion's deadline is
// gone: the call fails with ErrConversionTimedOut and the session must be
// closed, not reused.
func (s *Session) NavigateTo(uri string, timer *CountdownTimer) error {
	loaded := s.subscribe(cdp.EventLoadFired)
	defer s.unsubscribe(cdp.EventLoadFired)

	raw, err := s.call(cdp.MethodPageNavigate, cdp.NavigateParams{URL: uri}, timer)
	if err != nil {
		if errors.Is(err, ErrOperationTimedOut) {
			return fmt.Errorf("%w: navigating to %s", ErrConversionTimedOut, uri)
		}
		return err
	}

	var reply cdp.NavigateReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fmt.Errorf("%w: decoding navigate reply: %v", ErrPageLoad, err)
	}
	if reply.ErrorText != "" {
		return fmt.Errorf("%w: %s: %s", ErrPageLoad, uri, reply.ErrorText)
	}

	select {
	case <-loaded:
		return nil
	case <-timer.Done():
		return fmt.Errorf("%w: waiting for load of %s", ErrConversionTimedOut, uri)
	case <-s.closed:
		return s.closeErr
	}
}

// WaitForWindowStatus polls window.status until it equals target, and
// reports whether the match was observed within timeout. Timing out is an
// expected outcome, not an error; a page may legitimately never reach the
// requested status.
func (s *Session) WaitForWindowStatus(target string, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		return false, fmt.Errorf("%w: non-positive status timeout %v", ErrInvalidArgument, timeout)
	}
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}

		// Bound the evaluate call itself, so an unresponsive page cannot
		// stretch the sub-wait past its deadline.
		poll := NewCountdownTimer()
		_ = poll.Start(remaining)
		raw, err := s.call(cdp.MethodRuntimeEvaluate, cdp.EvaluateParams{
			Expression:    "window.status",
			ReturnByValue: true,
		}, poll)
		poll.Cancel()
		if errors.Is(err, ErrOperationTimedOut) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		var reply cdp.EvaluateReply
		if err := json.Unmarshal(raw, &reply); err != nil {
			return false, fmt.Errorf("decoding evaluate reply: %w", err)
		}
		var status string
		if reply.Result.Value != nil {
			_ = json.Unmarshal(reply.Result.Value, &status)
		}
		if status == target {
			return true, nil
		}

		wait := statusPollInterval
		if r := time.Until(deadline); r < wait {
			wait = r
		}
		if wait <= 0 {
			return false, nil
		}
		time.Sleep(wait)
	}
}

// PrintToPDF renders the current page with the given geometry and returns
// the raw PDF bytes. Subject to the same timer contract as every call.
func (s *Session) PrintToPDF(settings *PageSettings, timer *CountdownTimer) ([]byte, error) {
	raw, err := s.call(cdp.MethodPagePrintToPDF, settings.printParams(), timer)
	if err != nil {
		return nil, err
	}

	var reply cdp.PrintToPDFReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("%w: decoding render reply: %v", ErrPDFGeneration, err)
	}
	data, err := base64.StdEncoding.DecodeString(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", ErrPDFGeneration, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: renderer returned no data", ErrPDFGeneration)
	}
	return data, nil
}

// Close stops the receive loop, fails every still-pending call with
// ErrSessionClosed, disposes the tab, and releases the connection.
// Idempotent.
func (s *Session) Close() error {
	s.closeWith(ErrSessionClosed)
	return nil
}

// call sends one command and blocks until the matching response arrives,
// the session closes, or the timer elapses, whichever happens first. The
// pending entry is removed exactly once; a response arriving after expiry
// finds no entry and is discarded, so a late result can never be delivered
// to a caller that already gave up.
func (s *Session) call(method string, params any, timer *CountdownTimer) (json.RawMessage, error) {
	select {
	case <-s.closed:
		return nil, fmt.Errorf("%s: %w", method, s.closeErr)
	default:
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	ch := make(chan callResult, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	s.writeMu.Lock()
	err := s.conn.WriteJSON(cdp.Request{ID: id, Method: method, Params: params})
	s.writeMu.Unlock()
	if err != nil {
		s.abandon(id)
		select {
		case <-s.closed:
			return nil, fmt.Errorf("%s: %w", method, s.closeErr)
		default:
		}
		return nil, fmt.Errorf("%w: writing %s: %v", ErrSessionClosed, method, err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%s: %w", method, res.err)
		}
		return res.result, nil
	case <-timer.Done():
		s.abandon(id)
		return nil, fmt.Errorf("%w: %s", ErrOperationTimedOut, method)
	case <-s.closed:
		return nil, fmt.Errorf("%s: %w", method, s.closeErr)
	}
}

// abandon removes a pending entry after a timeout so a late response
// cannot leak to a future call.
func (s *Session) abandon(id int64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// subscribe registers a single-consumer channel for an event method.
func (s *Session) subscribe(method string) <-chan json.RawMessage {
	ch := make(chan json.RawMessage, 4)
	s.mu.Lock()
	s.events[method] = ch
	s.mu.Unlock()
	return ch
}

func (s *Session) unsubscribe(method string) {
	s.mu.Lock()
	delete(s.events, method)
	s.mu.Unlock()
}

// readLoop is the session's single receiver. Every inbound message is
// either correlated to a pending request by id, dispatched to an event
// subscriber, or discarded without failing the session.
func (s *Session) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.closeWith(s.disconnectCause())
			return
		}

		var msg cdp.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue // not a protocol message; ignore
		}
		switch {
		case msg.ID != 0:
			s.deliver(msg)
		case msg.Method != "":
			s.dispatch(msg)
		}
	}
}

// disconnectCause distinguishes a dead browser from an ordinary close.
func (s *Session) disconnectCause() error {
	select {
	case <-s.browserGone:
		return ErrBrowserLost
	default:
		return ErrSessionClosed
	}
}

// deliver resolves a pending call. Lookup and removal are one atomic step,
// so the result reaches at most one caller even under concurrent close or
// timeout.
func (s *Session) deliver(msg cdp.Message) {
	s.mu.Lock()
	ch, ok := s.pending[msg.ID]
	delete(s.pending, msg.ID)
	s.mu.Unlock()
	if !ok {
		return // caller timed out and abandoned the id
	}
	if msg.Error != nil {
		ch <- callResult{err: msg.Error}
		return
	}
	ch <- callResult{result: msg.Result}
}

// dispatch forwards an event to its subscriber, if any. Events nobody
// listens for are dropped; a full subscriber buffer drops too rather than
// stalling the receive loop.
func (s *Session) dispatch(msg cdp.Message) {
	s.mu.Lock()
	ch := s.events[msg.Method]
	s.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- msg.Params:
	default:
	}
}

// closeWith performs the one-shot teardown. cause becomes the error every
// pending and future call observes: ErrSessionClosed for an ordinary
// close, ErrBrowserLost when the process died under us.
func (s *Session) closeWith(cause error) {
	s.closeOnce.Do(func() {
		s.closeErr = cause
		close(s.closed)
		_ = s.conn.Close()

		s.mu.Lock()
		for id, ch := range s.pending {
			delete(s.pending, id)
			ch <- callResult{err: cause}
		}
		s.mu.Unlock()

		if !errors.Is(cause, ErrBrowserLost) {
			_ = cdp.CloseTarget(s.debugAddr, s.targetID)
		}
	})
}
