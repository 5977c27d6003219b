package cdp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestMessage - Envelope Decoding
// ---------------------------------------------------------------------------

func TestMessage_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		wantID     int64
		wantMethod string
		wantErr    bool
	}{
		{
			name:   "response",
			raw:    `{"id":7,"result":{"data":"JVBERi0="}}`,
			wantID: 7,
		},
		{
			name:       "event",
			raw:        `{"method":"Page.loadEventFired","params":{"timestamp":12.5}}`,
			wantMethod: "Page.loadEventFired",
		},
		{
			name:    "error response",
			raw:     `{"id":3,"error":{"code":-32601,"message":"method not found"}}`,
			wantID:  3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var msg Message
			if err := json.Unmarshal([]byte(tt.raw), &msg); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if msg.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", msg.ID, tt.wantID)
			}
			if msg.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", msg.Method, tt.wantMethod)
			}
			if (msg.Error != nil) != tt.wantErr {
				t.Errorf("Error = %v, wantErr %v", msg.Error, tt.wantErr)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	e := &Error{Code: -32000, Message: "printing failed", Data: "no page"}
	got := e.Error()
	if !strings.Contains(got, "printing failed") || !strings.Contains(got, "no page") {
		t.Errorf("Error() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestNewTarget - Tab Creation Over HTTP
// ---------------------------------------------------------------------------

func TestNewTarget_PUT(t *testing.T) {
	t.Parallel()

	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewEncoder(w).Encode(Target{
			ID:                   "tab-1",
			Type:                 "page",
			WebSocketDebuggerURL: "ws://" + r.Host + "/devtools/page/tab-1",
		})
	}))
	defer srv.Close()

	target, err := NewTarget(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("request method = %s, want PUT", gotMethod)
	}
	if target.ID != "tab-1" {
		t.Errorf("target ID = %q, want tab-1", target.ID)
	}
}

func TestNewTarget_FallsBackToGET(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = json.NewEncoder(w).Encode(Target{
			ID:                   "tab-2",
			WebSocketDebuggerURL: "ws://" + r.Host + "/devtools/page/tab-2",
		})
	}))
	defer srv.Close()

	target, err := NewTarget(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	if target.ID != "tab-2" {
		t.Errorf("target ID = %q, want tab-2", target.ID)
	}
}

func TestNewTarget_RejectsMissingWebSocketURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Target{ID: "tab-3"})
	}))
	defer srv.Close()

	_, err := NewTarget(srv.Listener.Addr().String())
	if !errors.Is(err, ErrEndpoint) {
		t.Fatalf("NewTarget = %v, want ErrEndpoint", err)
	}
}

func TestNewTarget_BrowserGone(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.Listener.Addr().String()
	srv.Close()

	_, err := NewTarget(addr)
	if !errors.Is(err, ErrEndpoint) {
		t.Fatalf("NewTarget against closed server = %v, want ErrEndpoint", err)
	}
}

func TestCloseTarget(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte("Target is closing"))
	}))
	defer srv.Close()

	if err := CloseTarget(srv.Listener.Addr().String(), "tab-9"); err != nil {
		t.Fatalf("CloseTarget: %v", err)
	}
	if gotPath != "/json/close/tab-9" {
		t.Errorf("path = %q, want /json/close/tab-9", gotPath)
	}
}
