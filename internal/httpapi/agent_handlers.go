package httpapi

import (
	"context"
	"net/http"

	"github.com/holdemtable/server/internal/auth"
)

type identityContextKey struct{}

// requireAgent wraps next with bearer-key resolution: spec.md §6's
// authenticated agent variant hashes the key, resolves it against s.keys,
// and rejects with 401 on any failure before next ever runs.
func (s *Server) requireAgent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.keys == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "agent api not configured"})
			return
		}
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		identity, err := s.keys.Validate(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid api key"})
			return
		}
		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next(w, r.WithContext(ctx))
	}
}

func identityFrom(r *http.Request) (auth.Identity, bool) {
	id, ok := r.Context().Value(identityContextKey{}).(auth.Identity)
	return id, ok
}

// handleAgentGetTable renders GetTable with hole cards unmasked for the
// authenticated caller's own seat, masked for every other agent, per
// spec.md §6's "masks other players' hole cards until showdown" note.
func (s *Server) handleAgentGetTable(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r)
	view, err := s.manager.GetTable(r.PathValue("id"), identity.AgentID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableViewDTO(view))
}

// handleAgentAction submits an action as the authenticated caller,
// ignoring any agentId the request body supplies.
func (s *Server) handleAgentAction(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r)
	s.submitAction(w, r, r.PathValue("id"), identity.AgentID)
}
