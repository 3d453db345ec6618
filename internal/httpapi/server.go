// Package httpapi is the HTTP surface of spec.md §6: a public,
// unauthenticated route table plus an authenticated agent variant that
// resolves a bearer API key to an identity and masks hole cards
// accordingly. Routing follows the teacher's internal/server.Server: a
// plain http.ServeMux (no third-party router appears anywhere in the
// example pack) fronting a websocket upgrade for live table pushes.
package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/holdemtable/server/internal/auth"
	"github.com/holdemtable/server/internal/escrow"
	"github.com/holdemtable/server/internal/tableman"
)

// Clock is the minimal time source handlers need; satisfied by
// time.Now directly in production and overridable in tests.
type Clock func() time.Time

// Server is the HTTP adapter in front of a tableman.Manager. It owns no
// game state of its own: every handler validates the request, optionally
// calls the escrow collaborator, and delegates to the manager.
type Server struct {
	manager  *tableman.Manager
	escrow   escrow.Boundary
	keys     *auth.Store
	logger   *log.Logger
	now      Clock
	upgrader websocket.Upgrader

	mux        *http.ServeMux
	routesOnce sync.Once

	streamsMu sync.Mutex
	streams   map[string]map[*streamClient]struct{} // tableID -> subscribers
}

// New builds a Server. keys may be nil if the authenticated agent surface
// is not in use.
func New(manager *tableman.Manager, esc escrow.Boundary, keys *auth.Store, logger *log.Logger) *Server {
	return &Server{
		manager: manager,
		escrow:  esc,
		keys:    keys,
		logger:  logger.With("component", "httpapi.Server"),
		now:     time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux:     http.NewServeMux(),
		streams: make(map[string]map[*streamClient]struct{}),
	}
}

// Handler returns the fully routed http.Handler.
func (s *Server) Handler() http.Handler {
	s.routesOnce.Do(s.registerRoutes)
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /tables", s.handleListTables)
	s.mux.HandleFunc("GET /tables/{id}", s.handleGetTable)
	s.mux.HandleFunc("POST /tables/{id}/sit", s.handleSit)
	s.mux.HandleFunc("POST /tables/{id}/leave", s.handleLeave)
	s.mux.HandleFunc("POST /tables/{id}/action", s.handleAction)
	s.mux.HandleFunc("POST /tables/{id}/rebuy", s.handleRebuy)
	s.mux.HandleFunc("POST /tables/{id}/add-bot", s.handleAddBot)
	s.mux.HandleFunc("POST /tables/{id}/emergency-refund", s.handleEmergencyRefund)
	s.mux.HandleFunc("GET /tables/{id}/stream", s.handleStream)
	s.mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)

	s.mux.HandleFunc("GET /agent/tables/{id}", s.requireAgent(s.handleAgentGetTable))
	s.mux.HandleFunc("POST /agent/tables/{id}/action", s.requireAgent(s.handleAgentAction))
}
