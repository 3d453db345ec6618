package card

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Deck is an ordered sequence of 52 unique cards, exclusively owned by the
// hand that created it. Cards are drawn by advancing an index rather than by
// mutating the backing slice, so the deck can be cheaply snapshotted for
// audit purposes.
type Deck struct {
	cards []Card
	next  int
}

// NewShuffled builds a full 52-card deck and shuffles it with Fisher-Yates
// using indices drawn from a cryptographically strong source. A failure to
// obtain randomness is fatal to starting a hand: it returns an error rather
// than silently falling back to a weaker source.
func NewShuffled() (*Deck, error) {
	cards := make([]Card, 0, 52)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, New(rank, suit))
		}
	}

	for i := len(cards) - 1; i > 0; i-- {
		j, err := cryptoIntn(i + 1)
		if err != nil {
			return nil, fmt.Errorf("card: shuffle: %w", err)
		}
		cards[i], cards[j] = cards[j], cards[i]
	}

	return &Deck{cards: cards}, nil
}

func cryptoIntn(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Draw removes and returns the next card from the deck.
func (d *Deck) Draw() (Card, bool) {
	if d.next >= len(d.cards) {
		return Card{}, false
	}
	c := d.cards[d.next]
	d.next++
	return c, true
}

// DrawN draws n cards in order.
func (d *Deck) DrawN(n int) []Card {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
