package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/holdemtable/server/internal/auth"
	"github.com/holdemtable/server/internal/config"
	"github.com/holdemtable/server/internal/escrow"
	"github.com/holdemtable/server/internal/persist"
	"github.com/holdemtable/server/internal/tableman"
)

func testLogger() *charmlog.Logger {
	l := charmlog.New(io.Discard)
	l.SetLevel(charmlog.FatalLevel)
	return l
}

func newTestServer(t *testing.T) (*Server, *tableman.Manager, *escrow.Mock) {
	t.Helper()
	cfg := config.TableConfig{Name: "t1", SmallBlind: 1, BigBlind: 2, MinBuyIn: 40, MaxBuyIn: 200, MaxSeats: 2}
	store := persist.NewInMemoryStore()
	queue := persist.NewQueue(store, testLogger(), 64)
	esc := escrow.NewMock()

	timings := tableman.DefaultTimings()
	timings.TickPeriod = time.Millisecond

	mgr, err := tableman.New(context.Background(), []config.TableConfig{cfg}, quartz.NewMock(t), testLogger(), queue, store, esc, timings)
	require.NoError(t, err)

	keys := auth.NewStore()
	require.NoError(t, auth.IssueKey(keys, "pa_sk_testkey", auth.Identity{AgentID: "agent-0", WalletAddress: "0xagent0"}))

	return New(mgr, esc, keys, testLogger()), mgr, esc
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListTablesReturnsSeededTable(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodGet, "/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tables []tableSummaryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	require.Len(t, tables, 1)
	require.Equal(t, "t1", tables[0].ID)
	require.Equal(t, 2, tables[0].OccupiedSeats)
}

func TestGetTableUnknownReturns404(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodGet, "/tables/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSitRejectsWhenTableFull(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/tables/t1/sit", sitRequest{
		SeatNumber: 0, BuyInAmount: 100, AgentName: "Carol",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSitDepositsEscrowThenRefundsOnRejectedSeat(t *testing.T) {
	s, _, esc := newTestServer(t)

	// Seat 0 is already occupied by a seeded bot, so SitAgent rejects this
	// and the handler must compensate the deposit it just made.
	rec := doRequest(t, s.Handler(), http.MethodPost, "/tables/t1/sit", sitRequest{
		SeatNumber: 0, BuyInAmount: 100, AgentName: "Dave", WalletAddress: "0xdave",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, esc.BalanceOf("t1", "0xdave"), "a rejected sit must leave no residual escrow balance")
}

func TestAddBotRejectsFullTable(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/tables/t1/add-bot", addBotRequest{Strategy: "fish"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddBotRejectsUnknownStrategy(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/tables/t1/add-bot", addBotRequest{Strategy: "shark"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionRejectsMalformedKind(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/tables/t1/action", actionRequest{
		AgentID: "t1-bot-0-0", Action: "shove",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboardListsAllSeededBots(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodGet, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []leaderboardRowDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
}

func TestAgentEndpointsRejectMissingBearerToken(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodGet, "/agent/tables/t1", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgentEndpointsRejectUnknownKey(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/agent/tables/t1", nil)
	req.Header.Set("Authorization", "Bearer pa_sk_wrongkey")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgentGetTableResolvesIdentityWithValidKey(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/agent/tables/t1", nil)
	req.Header.Set("Authorization", "Bearer pa_sk_testkey")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view tableViewDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, "t1", view.ID)
}

func TestEmergencyRefundClearsEscrowBalance(t *testing.T) {
	s, _, esc := newTestServer(t)
	require.NoError(t, esc.Deposit(context.Background(), "t1", "0xalice", 500))

	rec := doRequest(t, s.Handler(), http.MethodPost, "/tables/t1/emergency-refund", emergencyRefundRequest{WalletAddress: "0xalice"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 0, esc.BalanceOf("t1", "0xalice"))
}
