package evaluator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holdemtable/server/internal/card"
)

func c(rank card.Rank, suit card.Suit) card.Card { return card.New(rank, suit) }

func TestEvaluateIsOrderIndependent(t *testing.T) {
	seven := []card.Card{
		c(card.Ace, card.Spades), c(card.King, card.Spades),
		c(card.Queen, card.Spades), c(card.Jack, card.Spades), c(card.Ten, card.Spades),
		c(card.Two, card.Hearts), c(card.Three, card.Clubs),
	}
	baseline := Evaluate(seven)
	require.Equal(t, RoyalFlush, baseline.Rank)

	shuffled := make([]card.Card, len(seven))
	copy(shuffled, seven)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Evaluate(shuffled)
		require.Equal(t, 0, Compare(baseline, got))
	}
}

func TestCompareIsAntisymmetric(t *testing.T) {
	a := Evaluate([]card.Card{
		c(card.Ace, card.Spades), c(card.Ace, card.Hearts), c(card.King, card.Clubs),
		c(card.Two, card.Diamonds), c(card.Four, card.Hearts), c(card.Nine, card.Clubs), c(card.Jack, card.Spades),
	})
	b := Evaluate([]card.Card{
		c(card.King, card.Spades), c(card.King, card.Hearts), c(card.Queen, card.Clubs),
		c(card.Two, card.Diamonds), c(card.Four, card.Hearts), c(card.Nine, card.Clubs), c(card.Jack, card.Spades),
	})

	require.Greater(t, Compare(a, b), 0)
	require.Less(t, Compare(b, a), 0)
	require.Equal(t, 0, Compare(a, a))
}

func TestAceLowWheelStraight(t *testing.T) {
	seven := []card.Card{
		c(card.Ace, card.Spades), c(card.Two, card.Hearts), c(card.Three, card.Clubs),
		c(card.Four, card.Diamonds), c(card.Five, card.Spades),
		c(card.Nine, card.Clubs), c(card.King, card.Hearts),
	}
	hand := Evaluate(seven)
	require.Equal(t, Straight, hand.Rank)
	require.Equal(t, []int{5}, hand.Values)
}

func TestWheelLosesToSixHighStraight(t *testing.T) {
	wheel := Evaluate([]card.Card{
		c(card.Ace, card.Spades), c(card.Two, card.Hearts), c(card.Three, card.Clubs),
		c(card.Four, card.Diamonds), c(card.Five, card.Spades),
		c(card.Nine, card.Clubs), c(card.King, card.Hearts),
	})
	sixHigh := Evaluate([]card.Card{
		c(card.Two, card.Spades), c(card.Three, card.Hearts), c(card.Four, card.Clubs),
		c(card.Five, card.Diamonds), c(card.Six, card.Spades),
		c(card.Nine, card.Clubs), c(card.King, card.Hearts),
	})
	require.Less(t, Compare(wheel, sixHigh), 0)
}

func TestFullHouseBeatsFlush(t *testing.T) {
	fullHouse := Evaluate([]card.Card{
		c(card.Ten, card.Spades), c(card.Ten, card.Hearts), c(card.Ten, card.Clubs),
		c(card.Four, card.Diamonds), c(card.Four, card.Spades),
		c(card.Nine, card.Clubs), c(card.King, card.Hearts),
	})
	flush := Evaluate([]card.Card{
		c(card.Two, card.Spades), c(card.Five, card.Spades), c(card.Eight, card.Spades),
		c(card.Jack, card.Spades), c(card.King, card.Spades),
		c(card.Nine, card.Clubs), c(card.Four, card.Hearts),
	})
	require.Greater(t, Compare(fullHouse, flush), 0)
}

func TestExactTieIsZero(t *testing.T) {
	board := []card.Card{
		c(card.Two, card.Clubs), c(card.Seven, card.Diamonds), c(card.Nine, card.Hearts),
		c(card.Jack, card.Spades), c(card.King, card.Clubs),
	}
	hand1 := append(append([]card.Card{}, board...), c(card.Three, card.Hearts), c(card.Four, card.Spades))
	hand2 := append(append([]card.Card{}, board...), c(card.Three, card.Clubs), c(card.Four, card.Diamonds))

	require.Equal(t, 0, Compare(Evaluate(hand1), Evaluate(hand2)))
}
