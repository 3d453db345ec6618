package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 20 * time.Second
)

// streamClient is one websocket subscriber to a table's pushed view,
// grounded on the teacher's internal/server.handleWebSocket connection
// lifecycle (upgrade, a dedicated write goroutine, a ping ticker).
type streamClient struct {
	conn    *websocket.Conn
	tableID string
	send    chan tableViewDTO
}

// handleStream upgrades to a websocket and pushes the redacted table view
// every time Broadcast is called for this table, plus periodic pings to
// detect dead connections. The view is rendered unauthenticated (no
// viewer identity) since this endpoint has no bearer-key variant yet.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	if _, err := s.manager.GetTable(tableID, ""); err != nil {
		writeErr(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "table", tableID, "err", err)
		return
	}

	client := &streamClient{conn: conn, tableID: tableID, send: make(chan tableViewDTO, 8)}
	s.addStreamClient(client)

	if view, err := s.manager.GetTable(tableID, ""); err == nil {
		client.send <- toTableViewDTO(view)
	}

	go s.writePump(client)
	s.readPump(client)
}

func (s *Server) addStreamClient(c *streamClient) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	if s.streams[c.tableID] == nil {
		s.streams[c.tableID] = make(map[*streamClient]struct{})
	}
	s.streams[c.tableID][c] = struct{}{}
}

func (s *Server) removeStreamClient(c *streamClient) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	delete(s.streams[c.tableID], c)
	close(c.send)
}

// Broadcast pushes the current view of tableID to every subscribed
// client. cmd/pokerserver's broadcastLoop calls this for every table on
// its own timer; a slow client's channel fills and its push is silently
// dropped rather than blocking the broadcaster.
func (s *Server) Broadcast(tableID string) {
	view, err := s.manager.GetTable(tableID, "")
	if err != nil {
		return
	}
	dto := toTableViewDTO(view)

	s.streamsMu.Lock()
	clients := make([]*streamClient, 0, len(s.streams[tableID]))
	for c := range s.streams[tableID] {
		clients = append(clients, c)
	}
	s.streamsMu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- dto:
		default:
		}
	}
}

func (s *Server) writePump(c *streamClient) {
	ticker := time.NewTicker(streamPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case dto, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(dto)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; this endpoint is push-only, but it
// must keep reading so gorilla/websocket processes control frames (pings,
// close) and notices a dead peer.
func (s *Server) readPump(c *streamClient) {
	defer s.removeStreamClient(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
