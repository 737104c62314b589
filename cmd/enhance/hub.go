package main

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsWriteWait bounds a single push to a client.
const wsWriteWait = 5 * time.Second

// reloadMessage tells connected browsers to fetch the page again.
const reloadMessage = "reload"

// liveReloadScript is injected before </body> when the page is watched.
const liveReloadScript = `<script>
(function () {
  var socket = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  socket.onmessage = function (event) {
    if (event.data === "reload") {
      location.reload();
    }
  };
})();
</script>`

// reloadHub keeps the browsers connected on /ws and pushes reloads to them.
type reloadHub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

func newReloadHub(log *zap.Logger) *reloadHub {
	return &reloadHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Preview server for local use.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     log.Named("ws"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and holds the connection until the
// client leaves or the hub closes.
func (h *reloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}
	if !h.register(conn) {
		_ = conn.Close()
		return
	}
	defer h.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *reloadHub) register(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[conn] = struct{}{}
	h.log.Debug("client connected", zap.Int("clients", len(h.clients)))
	return true
}

func (h *reloadHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
		h.log.Debug("client disconnected", zap.Int("clients", len(h.clients)))
	}
}

// broadcast sends msg to every client and drops the ones that fail.
// A nil hub does nothing.
func (h *reloadHub) broadcast(msg string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			h.log.Debug("dropping client", zap.Error(err))
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

func (h *reloadHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Later upgrades are refused.
func (h *reloadHub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// injectReloadScript adds the live reload client before the last </body>,
// or at the end when the page has none.
func injectReloadScript(html string) string {
	if i := strings.LastIndex(html, "</body>"); i >= 0 {
		return html[:i] + liveReloadScript + html[i:]
	}
	return html + liveReloadScript
}
