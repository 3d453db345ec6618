package table

import "github.com/holdemtable/server/internal/card"

// Seat is a slot at a table. It is exclusively owned by its table and
// carries the per-session and per-hand state of whichever agent occupies
// it.
type Seat struct {
	Number int
	Agent  *Agent

	Stack int
	BuyIn int

	HoleCards [2]card.Card
	HasCards  bool

	CurrentBet int // chips committed this betting round

	IsSittingOut bool
	HasActed     bool
	HasFolded    bool
	IsAllIn      bool
}

// Occupied reports whether an agent currently sits here.
func (s *Seat) Occupied() bool { return s.Agent != nil }

// CanAct reports whether this seat may still act in the current hand.
func (s *Seat) CanAct() bool {
	return s.Occupied() && !s.IsSittingOut && !s.HasFolded && !s.IsAllIn
}

// ResetForNewHand clears all per-hand flags and cards, leaving Stack,
// BuyIn, and IsSittingOut untouched.
func (s *Seat) ResetForNewHand() {
	s.HoleCards = [2]card.Card{}
	s.HasCards = false
	s.CurrentBet = 0
	s.HasActed = false
	s.HasFolded = false
	s.IsAllIn = false
}

// DealHoleCards installs two hole cards for this hand.
func (s *Seat) DealHoleCards(a, b card.Card) {
	s.HoleCards = [2]card.Card{a, b}
	s.HasCards = true
}
