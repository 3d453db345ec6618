package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/holdemtable/server/internal/apperror"
	"github.com/holdemtable/server/internal/table"
)

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	summaries := s.manager.ListTables()
	dtos := make([]tableSummaryDTO, 0, len(summaries))
	for _, sm := range summaries {
		dtos = append(dtos, toTableSummaryDTO(sm))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	view, err := s.manager.GetTable(r.PathValue("id"), "")
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableViewDTO(view))
}

func (s *Server) handleSit(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	var req sitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	agentID := syntheticAgentID(tableID, req.SeatNumber, req.AgentName)

	ctx := r.Context()
	if req.WalletAddress != "" {
		if err := s.escrow.Deposit(ctx, tableID, req.WalletAddress, req.BuyInAmount); err != nil {
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "escrow deposit failed: " + err.Error()})
			return
		}
	}

	err := s.manager.SitAgent(tableID, req.SeatNumber, agentID, req.AgentName, req.BuyInAmount, req.WalletAddress)
	if err != nil {
		if req.WalletAddress != "" {
			// Compensating refund: the deposit already landed on-chain but
			// the seat never materialized, so settle it straight back.
			if refundErr := s.escrow.Settle(ctx, tableID, req.WalletAddress, req.BuyInAmount); refundErr != nil {
				s.logger.Error("compensating refund failed", "table", tableID, "wallet", req.WalletAddress, "err", refundErr)
			}
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		AgentID string `json:"agentId"`
	}{AgentID: agentID})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result, err := s.manager.LeaveAgent(tableID, req.AgentID, s.now())
	if err != nil {
		writeErr(w, err)
		return
	}

	resp := leaveResponse{CashOut: result.CashOut, WalletAddress: result.WalletAddress}
	if result.WalletAddress != "" {
		if err := s.escrow.Settle(r.Context(), tableID, result.WalletAddress, result.CashOut); err != nil {
			resp.SettlementError = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	s.submitAction(w, r, r.PathValue("id"), "")
}

func (s *Server) submitAction(w http.ResponseWriter, r *http.Request, tableID, forceAgentID string) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	agentID := req.AgentID
	if forceAgentID != "" {
		agentID = forceAgentID
	}

	kind, ok := table.ParseActionKind(req.Action)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown action " + req.Action})
		return
	}

	if err := s.manager.SubmitAction(tableID, agentID, kind, req.Amount, s.now()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRebuy(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	var req rebuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := s.manager.RebuyAgent(tableID, req.AgentID, req.Amount); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	var req addBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	strategy, ok := table.ParseAgentType(req.Strategy)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown strategy " + req.Strategy})
		return
	}
	if err := s.manager.AddBot(tableID, strategy); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleEmergencyRefund(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	var req emergencyRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := s.escrow.EmergencyRefundTable(r.Context(), tableID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	_ = req.WalletAddress // acknowledged by the on-chain settlement, not used to pick the amount
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows := s.manager.Leaderboard()
	dtos := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toLeaderboardRowDTO(row))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeErr maps an apperror sentinel to its spec.md §7 status code.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnavailable):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrProtocolTiming):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrExternalTransient):
		status = http.StatusBadGateway
	case errors.Is(err, apperror.ErrInvariant):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// syntheticAgentID derives a stable id for a freshly-seated human when the
// caller (a browser session, not yet an authenticated agent) has none of
// its own. Authenticated agent requests always carry their own AgentID
// from the API key instead.
func syntheticAgentID(tableID string, seatNumber int, name string) string {
	return tableID + "-seat" + strconv.Itoa(seatNumber) + "-" + name
}
