// Package evaluator implements best-5-of-7 Texas Hold'em hand evaluation
// and the total order over evaluated hands used for showdown and pot
// splitting.
package evaluator

import (
	"fmt"
	"sort"

	lru "github.com/opencoff/golang-lru"

	"github.com/holdemtable/server/internal/card"
)

// Category is one of the ten hand categories, increasing in strength.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c Category) String() string {
	switch c {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return "Straight Flush"
	case FourOfAKind:
		return "Four of a Kind"
	case FullHouse:
		return "Full House"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "Three of a Kind"
	case TwoPair:
		return "Two Pair"
	case OnePair:
		return "One Pair"
	case HighCard:
		return "High Card"
	default:
		return "Unknown"
	}
}

// EvaluatedHand is the result of evaluating a set of at least five cards:
// the best five-card hand found, its category, and the lexicographic
// tiebreaker values used by Compare.
type EvaluatedHand struct {
	Rank     Category
	Values   []int
	BestFive []card.Card
	Name     string
}

// Compare defines a total order over evaluated hands. It returns >0 if a is
// stronger than b, <0 if weaker, and 0 for an exact tie (pot-split).
func Compare(a, b EvaluatedHand) int {
	if a.Rank != b.Rank {
		if a.Rank > b.Rank {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Values) && i < len(b.Values); i++ {
		if a.Values[i] != b.Values[i] {
			if a.Values[i] > b.Values[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

var evalCache *lru.Cache

func init() {
	// Memoizes repeated evaluations of the same card set: a bot's post-flop
	// strength heuristic evaluates its hole cards plus the board on every
	// decision it makes on a street, and showdown evaluates them again, so
	// a bounded cache avoids recomputing the same best-5-of-7 search.
	c, err := lru.New(4096)
	if err != nil {
		panic(fmt.Sprintf("evaluator: failed to create cache: %v", err))
	}
	evalCache = c
}

// Evaluate returns the best possible 5-card hand from the given cards
// (at least five, typically seven: two hole cards plus five community
// cards). The result is independent of input order.
func Evaluate(cards []card.Card) EvaluatedHand {
	key := cacheKey(cards)
	if v, ok := evalCache.Get(key); ok {
		return v.(EvaluatedHand)
	}

	best := bestOfAllFives(cards)
	evalCache.Add(key, best)
	return best
}

func cacheKey(cards []card.Card) uint64 {
	sorted := make([]card.Card, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].Suit < sorted[j].Suit
	})
	var key uint64
	for _, c := range sorted {
		key = key<<6 | uint64(int(c.Rank)<<2|int(c.Suit))
	}
	return key
}

// bestOfAllFives enumerates every C(n,5) subset and keeps the strongest,
// which is sufficient to satisfy the total-order contract regardless of n.
func bestOfAllFives(cards []card.Card) EvaluatedHand {
	n := len(cards)
	if n < 5 {
		panic("evaluator: need at least 5 cards")
	}

	var best EvaluatedHand
	first := true

	combo := make([]int, 5)
	var recurse func(start, depth int)
	recurse = func(start, depth int) {
		if depth == 5 {
			five := make([]card.Card, 5)
			for i, idx := range combo {
				five[i] = cards[idx]
			}
			hand := evaluateFive(five)
			if first || Compare(hand, best) > 0 {
				best = hand
				first = false
			}
			return
		}
		for i := start; i < n; i++ {
			combo[depth] = i
			recurse(i+1, depth+1)
		}
	}
	recurse(0, 0)
	return best
}

func evaluateFive(five []card.Card) EvaluatedHand {
	sorted := make([]card.Card, len(five))
	copy(sorted, five)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank > sorted[j].Rank })

	var rankCounts [15]int
	var suitCounts [4]int
	for _, c := range sorted {
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
	}

	isFlush := false
	for s := 0; s < 4; s++ {
		if suitCounts[s] == 5 {
			isFlush = true
			break
		}
	}

	straightHigh := straightHighCard(rankCounts)

	if isFlush && straightHigh > 0 {
		if straightHigh == int(card.Ace) {
			return EvaluatedHand{Rank: RoyalFlush, Values: []int{straightHigh}, BestFive: orderForStraight(sorted, straightHigh), Name: RoyalFlush.String()}
		}
		return EvaluatedHand{Rank: StraightFlush, Values: []int{straightHigh}, BestFive: orderForStraight(sorted, straightHigh), Name: StraightFlush.String()}
	}

	groups := groupByCount(rankCounts)

	if len(groups[4]) > 0 {
		four := groups[4][0]
		kicker := highestExcluding(rankCounts, four)
		return EvaluatedHand{Rank: FourOfAKind, Values: []int{four, kicker}, BestFive: sorted, Name: FourOfAKind.String()}
	}

	if len(groups[3]) > 0 && (len(groups[2]) > 0 || len(groups[3]) > 1) {
		three := groups[3][0]
		var pair int
		if len(groups[3]) > 1 {
			pair = groups[3][1]
		} else {
			pair = groups[2][0]
		}
		return EvaluatedHand{Rank: FullHouse, Values: []int{three, pair}, BestFive: sorted, Name: FullHouse.String()}
	}

	if isFlush {
		values := topRanksDesc(rankCounts, 5)
		return EvaluatedHand{Rank: Flush, Values: values, BestFive: sorted, Name: Flush.String()}
	}

	if straightHigh > 0 {
		return EvaluatedHand{Rank: Straight, Values: []int{straightHigh}, BestFive: orderForStraight(sorted, straightHigh), Name: Straight.String()}
	}

	if len(groups[3]) > 0 {
		three := groups[3][0]
		kickers := kickersExcluding(rankCounts, 2, three)
		return EvaluatedHand{Rank: ThreeOfAKind, Values: append([]int{three}, kickers...), BestFive: sorted, Name: ThreeOfAKind.String()}
	}

	if len(groups[2]) >= 2 {
		hi, lo := groups[2][0], groups[2][1]
		kicker := highestExcluding(rankCounts, hi, lo)
		return EvaluatedHand{Rank: TwoPair, Values: []int{hi, lo, kicker}, BestFive: sorted, Name: TwoPair.String()}
	}

	if len(groups[2]) == 1 {
		pair := groups[2][0]
		kickers := kickersExcluding(rankCounts, 3, pair)
		return EvaluatedHand{Rank: OnePair, Values: append([]int{pair}, kickers...), BestFive: sorted, Name: OnePair.String()}
	}

	values := topRanksDesc(rankCounts, 5)
	return EvaluatedHand{Rank: HighCard, Values: values, BestFive: sorted, Name: HighCard.String()}
}

// straightHighCard returns the high card of a straight within the given
// rank-count histogram, or 0 if none. A-2-3-4-5 (the wheel) is recognized
// as a 5-high straight.
func straightHighCard(rankCounts [15]int) int {
	present := func(r int) bool { return rankCounts[r] > 0 }
	if present(14) && present(2) && present(3) && present(4) && present(5) {
		if !hasHigherStraight(rankCounts) {
			return 5
		}
	}
	for high := 14; high >= 6; high-- {
		ok := true
		for r := high; r > high-5; r-- {
			if !present(r) {
				ok = false
				break
			}
		}
		if ok {
			return high
		}
	}
	return 0
}

func hasHigherStraight(rankCounts [15]int) bool {
	present := func(r int) bool { return rankCounts[r] > 0 }
	for high := 14; high >= 6; high-- {
		ok := true
		for r := high; r > high-5; r-- {
			if !present(r) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// orderForStraight arranges the 5-card straight in descending rank order,
// treating the wheel's ace as the low card for display purposes.
func orderForStraight(sorted []card.Card, high int) []card.Card {
	if high != 5 {
		return sorted
	}
	out := make([]card.Card, 0, 5)
	var ace card.Card
	for _, c := range sorted {
		if c.Rank == card.Ace {
			ace = c
			continue
		}
		out = append(out, c)
	}
	out = append(out, ace)
	return out
}

func groupByCount(rankCounts [15]int) map[int][]int {
	groups := map[int][]int{2: {}, 3: {}, 4: {}}
	for r := 14; r >= 2; r-- {
		switch rankCounts[r] {
		case 2:
			groups[2] = append(groups[2], r)
		case 3:
			groups[3] = append(groups[3], r)
		case 4:
			groups[4] = append(groups[4], r)
		}
	}
	return groups
}

func highestExcluding(rankCounts [15]int, exclude ...int) int {
	excluded := make(map[int]bool, len(exclude))
	for _, e := range exclude {
		excluded[e] = true
	}
	for r := 14; r >= 2; r-- {
		if rankCounts[r] > 0 && !excluded[r] {
			return r
		}
	}
	return 0
}

func kickersExcluding(rankCounts [15]int, n int, exclude ...int) []int {
	excluded := make(map[int]bool, len(exclude))
	for _, e := range exclude {
		excluded[e] = true
	}
	kickers := make([]int, 0, n)
	for r := 14; r >= 2 && len(kickers) < n; r-- {
		if rankCounts[r] > 0 && !excluded[r] {
			kickers = append(kickers, r)
		}
	}
	return kickers
}

func topRanksDesc(rankCounts [15]int, n int) []int {
	out := make([]int, 0, n)
	for r := 14; r >= 2 && len(out) < n; r-- {
		if rankCounts[r] > 0 {
			out = append(out, r)
		}
	}
	return out
}
