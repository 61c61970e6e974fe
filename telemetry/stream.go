package telemetry

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/world"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 256
)

// Stream message types.
const (
	MsgTypeTable    = "table"
	MsgTypeBookmark = "bookmark"
	MsgTypeWindow   = "window"
)

// StreamMessage is the envelope written to every viewer.
type StreamMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// TableMessage carries one cycle of the interception table.
type TableMessage struct {
	Cycle int64              `json:"cycle"`
	Mode  string             `json:"mode"`
	Ball  geom.Vec           `json:"ball"`
	Table intercept.Snapshot `json:"table"`
}

// NewTableMessage wraps a table snapshot for the stream.
func NewTableMessage(snap intercept.Snapshot, mode world.GameMode, ball geom.Vec) StreamMessage {
	return StreamMessage{
		Type: MsgTypeTable,
		Data: TableMessage{Cycle: snap.Time.Cycle, Mode: mode.String(), Ball: ball, Table: snap},
	}
}

// allowOrigin accepts non-browser clients, same-origin pages and localhost.
func allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || strings.HasPrefix(host, "[::1]") || host == "::1"
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       allowOrigin,
	EnableCompression: true,
}

// Stream fans table updates out to websocket viewers.
// Broadcast never blocks the match loop; slow viewers miss messages.
type Stream struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[int]*viewer
	nextID  int

	register   chan *viewer
	unregister chan *viewer
	broadcast  chan StreamMessage
	done       chan struct{}
}

type viewer struct {
	id     int
	conn   *websocket.Conn
	send   chan StreamMessage
	stream *Stream
}

// NewStream creates a stream hub. Call Run to start delivering messages.
func NewStream(logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		logger:     logger,
		clients:    make(map[int]*viewer),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan StreamMessage, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Run delivers messages until ctx is cancelled, then disconnects every viewer.
func (s *Stream) Run(ctx context.Context) {
	defer func() {
		close(s.done)
		s.mu.Lock()
		for id, v := range s.clients {
			delete(s.clients, id)
			close(v.send)
		}
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case v := <-s.register:
			s.mu.Lock()
			s.clients[v.id] = v
			s.mu.Unlock()
			s.logger.Info("viewer connected", "viewer", v.id)

		case v := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[v.id]; ok {
				delete(s.clients, v.id)
				close(v.send)
			}
			s.mu.Unlock()
			s.logger.Info("viewer disconnected", "viewer", v.id)

		case msg := <-s.broadcast:
			s.mu.RLock()
			for _, v := range s.clients {
				select {
				case v.send <- msg:
				default:
					s.logger.Debug("viewer buffer full", "viewer", v.id, "type", msg.Type)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// Broadcast queues msg for every connected viewer.
// Reports false when the message was dropped.
func (s *Stream) Broadcast(msg StreamMessage) bool {
	if s == nil {
		return false
	}
	select {
	case s.broadcast <- msg:
		return true
	default:
		return false
	}
}

// Clients returns the number of connected viewers.
func (s *Stream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ServeHTTP upgrades the request to a websocket viewer.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	v := &viewer{id: id, conn: conn, send: make(chan StreamMessage, sendBuffer), stream: s}
	select {
	case s.register <- v:
	case <-s.done:
		conn.Close()
		return
	}

	go v.writePump()
	go v.readPump()
}

// readPump discards viewer input and keeps the read deadline fresh.
func (v *viewer) readPump() {
	defer func() {
		select {
		case v.stream.unregister <- v:
		case <-v.stream.done:
		}
		v.conn.Close()
	}()

	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				v.stream.logger.Warn("websocket read", "viewer", v.id, "error", err)
			}
			return
		}
	}
}

func (v *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
