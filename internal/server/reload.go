package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// debounce coalesces bursts of file events; editors often write a file
// several times per save.
const debounce = 100 * time.Millisecond

// message is sent to reload clients. Pages reload on RELOAD; the graph is
// never patched in place.
type message struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

const (
	// writeWait bounds one websocket write.
	writeWait = time.Second
	// sendBuffer is how many messages may queue for one client before it
	// counts as stalled and is dropped.
	sendBuffer = 8
)

// client is one reload websocket. Only its writer goroutine writes to conn.
type client struct {
	id   string
	conn *websocket.Conn
	send chan message
}

// hub tracks reload websocket clients.
type hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

func newHub(log *zap.Logger) *hub {
	return &hub{
		log:     log,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			// The reload channel carries no data; any page may listen.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan message, sendBuffer)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Debug("reload client connected", zap.String("client", c.id))

	go h.writeLoop(c)
	defer h.drop(c.id)

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		if msg.Type == "HELLO" {
			h.send(c.id, message{Type: "ACK", ID: c.id})
		}
	}
}

// writeLoop drains c.send onto the connection. A failed write drops the
// client; a closed queue ends the session with a close frame.
func (h *hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.log.Debug("websocket write", zap.String("client", c.id), zap.Error(err))
			h.drop(c.id)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
}

// drop forgets a client and closes its queue, which stops its writer.
func (h *hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(id)
}

func (h *hub) dropLocked(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
}

// enqueue queues msg for c without blocking. A full queue drops the client.
// h.mu must be held.
func (h *hub) enqueue(c *client, msg message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		h.log.Warn("dropping stalled reload client", zap.String("client", c.id))
		h.dropLocked(c.id)
		return false
	}
}

func (h *hub) send(id string, msg message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		h.enqueue(c, msg)
	}
}

// broadcast queues msg for every client and returns how many accepted it.
func (h *hub) broadcast(msg message) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for _, c := range h.clients {
		if h.enqueue(c, msg) {
			sent++
		}
	}
	return sent
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// closeAll drops every client; each writer sends a going-away close frame.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.dropLocked(id)
	}
}

// watch reloads when the payload or taxonomy file changes. Directories are
// watched rather than files so atomic renames are seen.
func (s *Server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, f := range []string{s.cfg.Data.PayloadFile, s.cfg.Data.TaxonomyFile} {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	s.log.Info("watching data files", zap.Int("files", len(files)))

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(ev.Name)] || ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			_ = s.Reload()
		}
	}
}
