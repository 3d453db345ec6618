package httpapi

import (
	"github.com/holdemtable/server/internal/card"
	"github.com/holdemtable/server/internal/tableman"
)

// tableSummaryDTO is the wire shape of a ListTables row.
type tableSummaryDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	SmallBlind        int    `json:"smallBlind"`
	BigBlind          int    `json:"bigBlind"`
	MaxSeats          int    `json:"maxSeats"`
	OccupiedSeats     int    `json:"occupiedSeats"`
	CurrentHandNumber int    `json:"currentHandNumber"`
	Phase             string `json:"phase"`
}

func toTableSummaryDTO(s tableman.TableSummary) tableSummaryDTO {
	return tableSummaryDTO{
		ID: s.ID, Name: s.Name, SmallBlind: s.SmallBlind, BigBlind: s.BigBlind,
		MaxSeats: s.MaxSeats, OccupiedSeats: s.OccupiedSeats,
		CurrentHandNumber: s.CurrentHandNumber, Phase: s.Phase,
	}
}

type seatViewDTO struct {
	Number       int          `json:"number"`
	AgentID      string       `json:"agentId,omitempty"`
	DisplayName  string       `json:"displayName,omitempty"`
	Stack        int          `json:"stack"`
	CurrentBet   int          `json:"currentBet"`
	HoleCards    []card.Card  `json:"holeCards,omitempty"`
	IsSittingOut bool         `json:"isSittingOut"`
	HasFolded    bool         `json:"hasFolded"`
	IsAllIn      bool         `json:"isAllIn"`
}

type tableViewDTO struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	SmallBlind       int           `json:"smallBlind"`
	BigBlind         int           `json:"bigBlind"`
	Seats            []seatViewDTO `json:"seats"`
	CommunityCards   []card.Card   `json:"communityCards,omitempty"`
	Pot              int           `json:"pot"`
	Phase            string        `json:"phase"`
	HandNumber       int           `json:"handNumber"`
	DealerSeatNumber int           `json:"dealerSeatNumber"`
	CurrentTurnSeat  int           `json:"currentTurnSeat,omitempty"`
	HasCurrentTurn   bool          `json:"hasCurrentTurn"`
}

func toTableViewDTO(v tableman.TableView) tableViewDTO {
	seats := make([]seatViewDTO, 0, len(v.Seats))
	for _, sv := range v.Seats {
		seats = append(seats, seatViewDTO{
			Number: sv.Number, AgentID: sv.AgentID, DisplayName: sv.DisplayName,
			Stack: sv.Stack, CurrentBet: sv.CurrentBet, HoleCards: sv.HoleCards,
			IsSittingOut: sv.IsSittingOut, HasFolded: sv.HasFolded, IsAllIn: sv.IsAllIn,
		})
	}
	return tableViewDTO{
		ID: v.ID, Name: v.Name, SmallBlind: v.SmallBlind, BigBlind: v.BigBlind,
		Seats: seats, CommunityCards: v.CommunityCards, Pot: v.Pot, Phase: v.Phase,
		HandNumber: v.HandNumber, DealerSeatNumber: v.DealerSeatNumber,
		CurrentTurnSeat: v.CurrentTurnSeat, HasCurrentTurn: v.HasCurrentTurn,
	}
}

type leaderboardRowDTO struct {
	AgentID          string `json:"agentId"`
	DisplayName      string `json:"displayName"`
	CumulativeProfit int    `json:"cumulativeProfit"`
	UnrealizedDelta  int    `json:"unrealizedDelta"`
	TotalProfit      int    `json:"totalProfit"`
}

func toLeaderboardRowDTO(r tableman.LeaderboardRow) leaderboardRowDTO {
	return leaderboardRowDTO{
		AgentID: r.AgentID, DisplayName: r.DisplayName,
		CumulativeProfit: r.CumulativeProfit, UnrealizedDelta: r.UnrealizedDelta,
		TotalProfit: r.TotalProfit,
	}
}

type sitRequest struct {
	SeatNumber    int    `json:"seatNumber"`
	BuyInAmount   int    `json:"buyInAmount"`
	AgentName     string `json:"agentName"`
	WalletAddress string `json:"walletAddress,omitempty"`
	DepositTxHash string `json:"depositTxHash,omitempty"`
}

type leaveRequest struct {
	AgentID string `json:"agentId"`
}

type leaveResponse struct {
	CashOut          int    `json:"cashOut"`
	WalletAddress    string `json:"walletAddress,omitempty"`
	SettlementError  string `json:"settlementError,omitempty"`
}

type actionRequest struct {
	AgentID string `json:"agentId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

type rebuyRequest struct {
	AgentID string `json:"agentId"`
	Amount  int    `json:"amount"`
}

type addBotRequest struct {
	Strategy string `json:"strategy"`
}

type emergencyRefundRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type errorResponse struct {
	Error string `json:"error"`
}
