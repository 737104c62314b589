package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// dialHub connects a client to hub and waits until it is registered.
func dialHub(t *testing.T, hub *reloadHub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(5 * time.Second)
	for hub.clientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.clientCount() == 0 {
		t.Fatal("client never registered")
	}
	return conn
}

func TestReloadHub_Broadcast(t *testing.T) {
	t.Parallel()

	hub := newReloadHub(zap.NewNop())
	defer hub.Close()
	conn := dialHub(t, hub)

	hub.broadcast(reloadMessage)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(msg) != reloadMessage {
		t.Errorf("message = %q, want %q", msg, reloadMessage)
	}
}

func TestReloadHub_Close(t *testing.T) {
	t.Parallel()

	hub := newReloadHub(zap.NewNop())
	conn := dialHub(t, hub)

	hub.Close()
	if n := hub.clientCount(); n != 0 {
		t.Errorf("clientCount() = %d after Close", n)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("ReadMessage() error = nil on a closed hub")
	}
}

func TestReloadHub_NilIsNoop(t *testing.T) {
	t.Parallel()

	var hub *reloadHub
	hub.broadcast(reloadMessage)
	hub.Close()
}

func TestInjectReloadScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		html      string
		wantAfter string
	}{
		{name: "before body end", html: "<html><body><p>x</p></body></html>", wantAfter: "</body></html>"},
		{name: "no body end", html: "<p>x</p>", wantAfter: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := injectReloadScript(tt.html)
			if !strings.HasSuffix(got, liveReloadScript+tt.wantAfter) {
				t.Errorf("injectReloadScript() = %q", got)
			}
			if strings.Count(got, "<script>") != 1 {
				t.Errorf("script injected %d times", strings.Count(got, "<script>"))
			}
		})
	}
}

func TestRouter_LiveReload(t *testing.T) {
	t.Parallel()

	page := &fakePage{html: "<html><body>live</body></html>"}
	hub := newReloadHub(zap.NewNop())
	defer hub.Close()
	srv := httptest.NewServer(newRouter(page, newServeMetrics(page), hub, zap.NewNop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "new WebSocket") {
		t.Errorf("page without live reload client: %q", body)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial /ws error = %v", err)
	}
	_ = conn.Close()
}
