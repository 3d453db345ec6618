package table

import (
	"fmt"
	"time"

	"github.com/holdemtable/server/internal/card"
)

// TableConfig is the fixed, immutable-at-runtime configuration for a table,
// drawn from the known set seeded at startup.
type TableConfig struct {
	ID         string
	Name       string
	SmallBlind int
	BigBlind   int
	MinBuyIn   int
	MaxBuyIn   int
	MaxSeats   int
}

const maxHandHistory = 50

// Table is a poker table: its fixed configuration, its seats, the hand
// currently in progress (if any), and a bounded archive of completed
// hands. A Table is exclusively owned by the game manager and, while a
// hand is active, that hand exclusively owns its seats' per-hand state.
type Table struct {
	Config TableConfig

	Seats []*Seat

	CurrentHand *HandState

	// HandHistory is a ring buffer of at most maxHandHistory completed
	// hands, most recent last.
	HandHistory []*HandSnapshot
	HandCount   int

	DealerSeatNumber int // -1 until the first hand is dealt
}

// NewTable creates a table with config.MaxSeats empty seats.
func NewTable(config TableConfig) *Table {
	seats := make([]*Seat, config.MaxSeats)
	for i := range seats {
		seats[i] = &Seat{Number: i}
	}
	return &Table{
		Config:           config,
		Seats:            seats,
		DealerSeatNumber: -1,
	}
}

// SeatAgent installs agent into seatNumber with the given buy-in. The seat
// must be empty and the buy-in within [MinBuyIn, MaxBuyIn]. Newly seated
// humans may start sitting out so a client can observe the seat before
// being dealt in; the tick loop clears that flag between hands.
func (t *Table) SeatAgent(seatNumber int, agent *Agent, buyIn int, startSittingOut bool) error {
	seat, err := t.seatAt(seatNumber)
	if err != nil {
		return err
	}
	if seat.Occupied() {
		return fmt.Errorf("table: seat %d is occupied", seatNumber)
	}
	if buyIn < t.Config.MinBuyIn || buyIn > t.Config.MaxBuyIn {
		return fmt.Errorf("table: buy-in %d outside range [%d, %d]", buyIn, t.Config.MinBuyIn, t.Config.MaxBuyIn)
	}

	*seat = Seat{
		Number:       seatNumber,
		Agent:        agent,
		Stack:        buyIn,
		BuyIn:        buyIn,
		IsSittingOut: startSittingOut,
	}
	return nil
}

// RemoveAgent clears seatNumber and returns the agent that occupied it,
// crediting the agent's lifetime profit by stack minus total buy-in.
func (t *Table) RemoveAgent(seatNumber int) (*Agent, error) {
	seat, err := t.seatAt(seatNumber)
	if err != nil {
		return nil, err
	}
	if !seat.Occupied() {
		return nil, fmt.Errorf("table: seat %d is empty", seatNumber)
	}

	agent := seat.Agent
	agent.CumulativeProfit += seat.Stack - seat.BuyIn
	*seat = Seat{Number: seatNumber}
	return agent, nil
}

// SeatOf returns the seat currently occupied by agentID, if any.
func (t *Table) SeatOf(agentID string) *Seat {
	for _, s := range t.Seats {
		if s.Occupied() && s.Agent.ID == agentID {
			return s
		}
	}
	return nil
}

// NextActiveSeat returns the next clockwise seat after afterSeat that is
// occupied and not sitting out, wrapping around the table. It returns nil
// if no such seat exists.
func (t *Table) NextActiveSeat(afterSeat int) *Seat {
	n := len(t.Seats)
	if n == 0 {
		return nil
	}
	for i := 1; i <= n; i++ {
		idx := (afterSeat + i) % n
		s := t.Seats[idx]
		if s.Occupied() && !s.IsSittingOut {
			return s
		}
	}
	return nil
}

// ActiveSeatCount returns the number of occupied, not-sitting-out seats.
func (t *Table) ActiveSeatCount() int {
	n := 0
	for _, s := range t.Seats {
		if s.Occupied() && !s.IsSittingOut {
			n++
		}
	}
	return n
}

// AdvanceDealerButton moves the dealer button to the next active seat
// clockwise of the current one. On the first hand (DealerSeatNumber == -1)
// it picks the first active seat.
func (t *Table) AdvanceDealerButton() {
	if t.DealerSeatNumber == -1 {
		first := t.NextActiveSeat(len(t.Seats) - 1)
		if first == nil {
			return
		}
		t.DealerSeatNumber = first.Number
		return
	}
	next := t.NextActiveSeat(t.DealerSeatNumber)
	if next == nil {
		return
	}
	t.DealerSeatNumber = next.Number
}

func (t *Table) seatAt(seatNumber int) (*Seat, error) {
	if seatNumber < 0 || seatNumber >= len(t.Seats) {
		return nil, fmt.Errorf("table: seat %d out of range", seatNumber)
	}
	return t.Seats[seatNumber], nil
}

// ArchiveHand appends snap (the pointer itself, not a copy) to the bounded
// hand history, evicting the oldest entry once the buffer is full.
func (t *Table) ArchiveHand(snap *HandSnapshot) {
	t.HandHistory = append(t.HandHistory, snap)
	if len(t.HandHistory) > maxHandHistory {
		t.HandHistory = t.HandHistory[len(t.HandHistory)-maxHandHistory:]
	}
}

// HandSnapshot is the immutable, archived record of a completed hand.
type HandSnapshot struct {
	HandNumber     int
	StartedAt      time.Time
	CompletedAt    time.Time
	CommunityCards []card.Card
	Pot            int
	Winners        []Winner
	Actions        []Action
}

// Winner records a single payout from a pot at showdown or from an
// uncontested fold.
type Winner struct {
	AgentID   string
	AgentName string
	Amount    int
	HandName  string
}
