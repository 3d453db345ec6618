package hand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/holdemtable/server/internal/card"
	"github.com/holdemtable/server/internal/table"
)

func newTestTable(t *testing.T, seatCount int, stacks []int) *table.Table {
	cfg := table.TableConfig{ID: "t1", Name: "Test", SmallBlind: 1, BigBlind: 2, MinBuyIn: 1, MaxBuyIn: 1000, MaxSeats: seatCount}
	tb := table.NewTable(cfg)
	for i, stack := range stacks {
		require.NoError(t, tb.SeatAgent(i, &table.Agent{ID: seatAgentID(i), DisplayName: seatAgentID(i)}, stack, false))
	}
	return tb
}

func seatAgentID(i int) string {
	return []string{"a0", "a1", "a2", "a3", "a4", "a5"}[i]
}

func TestFoldOutWinMatchesLiteralScenario(t *testing.T) {
	tb := newTestTable(t, 3, []int{100, 100, 100})
	now := time.Now()
	require.NoError(t, StartHand(tb, now))
	require.Equal(t, 0, tb.DealerSeatNumber)
	require.Equal(t, 3, tb.CurrentHand.Pot)

	turn, ok := tb.CurrentHand.CurrentTurnSeat()
	require.True(t, ok)
	require.Equal(t, 0, turn)

	require.NoError(t, ProcessAction(tb, 0, table.Fold, 0, now.Add(time.Second)))
	turn, ok = tb.CurrentHand.CurrentTurnSeat()
	require.True(t, ok)
	require.Equal(t, 1, turn)

	require.NoError(t, ProcessAction(tb, 1, table.Fold, 0, now.Add(2*time.Second)))

	require.Equal(t, table.Showdown, tb.CurrentHand.Phase)
	require.Len(t, tb.CurrentHand.Winners, 1)
	require.Equal(t, "Last player standing", tb.CurrentHand.Winners[0].HandName)
	require.Equal(t, 3, tb.CurrentHand.Winners[0].Amount)

	require.NoError(t, CompleteShowdown(tb, now.Add(3*time.Second)))
	require.Nil(t, tb.CurrentHand)
	require.Equal(t, []int{100, 99, 101}, []int{tb.Seats[0].Stack, tb.Seats[1].Stack, tb.Seats[2].Stack})
}

func TestHeadsUpDealerIsSmallBlindAndActsFirstPreflop(t *testing.T) {
	tb := newTestTable(t, 2, []int{100, 100})
	now := time.Now()
	require.NoError(t, StartHand(tb, now))

	dealer := tb.DealerSeatNumber
	h := tb.CurrentHand
	require.Equal(t, dealer, h.SmallBlindSeatNumber)

	turn, ok := h.CurrentTurnSeat()
	require.True(t, ok)
	require.Equal(t, dealer, turn, "dealer (small blind) acts first heads-up preflop")
}

func TestShortStackBlindBecomesAllInWithoutChangingMinRaise(t *testing.T) {
	tb := newTestTable(t, 2, []int{1, 100})
	now := time.Now()
	require.NoError(t, StartHand(tb, now))
	h := tb.CurrentHand

	dealerSeat := tb.DealerSeatNumber
	require.True(t, tb.Seats[dealerSeat].IsAllIn)
	require.Equal(t, 2, h.MinRaise)
}

func TestThreeWayAllInSidePots(t *testing.T) {
	tb := newTestTable(t, 3, []int{10, 40, 100})
	now := time.Now()
	require.NoError(t, StartHand(tb, now))

	for {
		turn, ok := tb.CurrentHand.CurrentTurnSeat()
		if !ok {
			break
		}
		require.NoError(t, ProcessAction(tb, turn, table.AllIn, 0, now))
		if tb.CurrentHand.Phase != table.Preflop {
			break
		}
	}

	require.Equal(t, table.Showdown, tb.CurrentHand.Phase)
	h := tb.CurrentHand
	require.NoError(t, CompleteShowdown(tb, now))

	require.Len(t, h.SidePots, 2)
	require.Equal(t, 30, h.SidePots[0].Amount)
	require.ElementsMatch(t, []int{0, 1, 2}, h.SidePots[0].Eligible)
	require.Equal(t, 60, h.SidePots[1].Amount)
	require.ElementsMatch(t, []int{1, 2}, h.SidePots[1].Eligible)
}

func TestSplitPotOddChipGoesToEarliestDealtOrder(t *testing.T) {
	tb := newTestTable(t, 2, []int{99, 99})
	tb.DealerSeatNumber = 0
	tb.Seats[0].Agent = &table.Agent{ID: "a0", DisplayName: "a0"}
	tb.Seats[1].Agent = &table.Agent{ID: "a1", DisplayName: "a1"}

	deck, err := card.NewShuffled()
	require.NoError(t, err)
	h := table.NewHandState("h1", 1, deck, map[int]int{0: 99, 1: 99})
	h.DealtOrder = []int{0, 1}
	h.DealerSeatNumber = 0
	h.Phase = table.Showdown
	h.Pot = 3
	h.CommunityCards = []card.Card{
		card.New(card.Nine, card.Spades), card.New(card.Ten, card.Spades), card.New(card.Jack, card.Spades),
		card.New(card.Queen, card.Spades), card.New(card.King, card.Spades),
	}
	tb.Seats[0].HoleCards = [2]card.Card{card.New(card.Two, card.Hearts), card.New(card.Three, card.Clubs)}
	tb.Seats[1].HoleCards = [2]card.Card{card.New(card.Two, card.Diamonds), card.New(card.Three, card.Hearts)}
	tb.CurrentHand = h

	pots := []table.SidePot{{Amount: 3, Eligible: []int{0, 1}}}
	payoutPots(tb, h, pots)
	require.Len(t, h.Winners, 2)
	total := h.Winners[0].Amount + h.Winners[1].Amount
	require.Equal(t, 3, total)
	require.Equal(t, 2, h.Winners[0].Amount, "the earlier seat in dealt order gets the odd chip")
	require.Equal(t, 1, h.Winners[1].Amount)
}

func TestAbortReturnsInRoundBetsAndClearsHand(t *testing.T) {
	tb := newTestTable(t, 3, []int{100, 100, 100})
	now := time.Now()
	require.NoError(t, StartHand(tb, now))

	before := tb.Seats[0].Stack + tb.Seats[1].Stack + tb.Seats[2].Stack + tb.CurrentHand.Pot
	Abort(tb)
	require.Nil(t, tb.CurrentHand)
	after := tb.Seats[0].Stack + tb.Seats[1].Stack + tb.Seats[2].Stack
	require.Equal(t, before, after)
}
