package api

import (
	"net/http"
	"time"

	"github.com/countygis/parcels/pkg/realtime"
	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleEvents streams dataset events over a WebSocket. The first message is
// an init event describing the current dataset; reload and generate events
// follow as they happen, with periodic heartbeats in between.
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Event stream unavailable", "No event hub is configured")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		s.logger.Warnf("websocket upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	defer func() { _ = conn.Close() }()

	id, events := s.hub.Register()
	defer s.hub.Unregister(id)

	stats := s.searcher.Stats()
	initial := realtime.Event{
		Type: realtime.TypeInit,
		Dataset: &realtime.DatasetEvent{
			Generation:   stats.Generation,
			TotalEntries: stats.TotalEntries,
			Skipped:      stats.Skipped,
			LoadedAt:     stats.LoadedAt,
		},
	}
	if err := s.writeEvent(conn, initial); err != nil {
		return
	}

	// Drain client frames so close messages are processed
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.writeEvent(conn, realtime.Event{Type: realtime.TypeHeartbeat}); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, ev realtime.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(ev); err != nil {
		s.logger.Debugf("websocket write failed: %v", err)
		return err
	}
	return nil
}
