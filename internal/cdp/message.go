// Package cdp holds the wire types for the subset of the Chrome DevTools
// Protocol this library speaks: tab management, navigation, page readiness,
// script evaluation, and PDF rendering.
//
// The protocol is asynchronous JSON over a websocket. Outgoing commands
// carry a session-unique id; the browser answers with a response bearing
// the same id, possibly out of send order, and interleaves unsolicited
// event messages identified by method name. Correlation is by id only.
package cdp

import (
	"encoding/json"
	"fmt"
)

// Request is the envelope for an outgoing command.
type Request struct {
	ID     int64 `json:"id"`
	Method string `json:"method"`
	Params any   `json:"params,omitempty"`
}

// Message is the inbound envelope. A response has ID set; an event has
// Method set. Anything else is noise and is discarded by the receiver.
type Message struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Error is the protocol-level failure attached to a response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("cdp error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}
