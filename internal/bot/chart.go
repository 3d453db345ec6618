package bot

import (
	"fmt"
	"sync"

	"github.com/opencoff/go-chd"

	"github.com/holdemtable/server/internal/card"
)

// chartEntry is one of the 169 canonical starting hands: a pair, a suited
// combo, or an offsuit combo, keyed the standard way ("AA", "AKs", "72o").
type chartEntry struct {
	key      string
	strength float64
}

var (
	chartOnce    sync.Once
	chartMPH     *chd.Chd
	chartEntries []chartEntry
)

// buildChart constructs the 169-entry canonical starting-hand table and
// its minimal perfect hash once, lazily, on first use.
func buildChart() {
	ranks := []card.Rank{card.Ace, card.King, card.Queen, card.Jack, card.Ten,
		card.Nine, card.Eight, card.Seven, card.Six, card.Five, card.Four, card.Three, card.Two}

	chartEntries = make([]chartEntry, 0, 169)
	for i, hi := range ranks {
		chartEntries = append(chartEntries, chartEntry{key: canonicalKey(hi, hi, false), strength: pairStrength(hi)})
		for _, lo := range ranks[i+1:] {
			chartEntries = append(chartEntries, chartEntry{key: canonicalKey(hi, lo, true), strength: unpairedStrength(hi, lo, true)})
			chartEntries = append(chartEntries, chartEntry{key: canonicalKey(hi, lo, false), strength: unpairedStrength(hi, lo, false)})
		}
	}

	keys := make([][]byte, len(chartEntries))
	for i, e := range chartEntries {
		keys[i] = []byte(e.key)
	}

	builder, err := chd.NewBuilder(keys)
	if err != nil {
		panic(fmt.Sprintf("bot: building preflop chart hash: %v", err))
	}
	mph, err := builder.Build(2.0)
	if err != nil {
		panic(fmt.Sprintf("bot: freezing preflop chart hash: %v", err))
	}
	chartMPH = mph
}

// canonicalKey renders hi and lo (hi >= lo by rank) the standard way: the
// pair form "AA", or suited/offsuit form "AKs"/"AKo".
func canonicalKey(hi, lo card.Rank, suited bool) string {
	if hi == lo {
		return hi.String() + hi.String()
	}
	if suited {
		return hi.String() + lo.String() + "s"
	}
	return hi.String() + lo.String() + "o"
}

// preflopStrength looks a starting hand up in the canonical chart via its
// minimal perfect hash.
func preflopStrength(a, b card.Card) float64 {
	chartOnce.Do(buildChart)

	hi, lo := a.Rank, b.Rank
	if lo > hi {
		hi, lo = lo, hi
	}
	key := canonicalKey(hi, lo, hi != lo && a.Suit == b.Suit)
	idx := chartMPH.Find([]byte(key))
	if idx >= uint32(len(chartEntries)) || chartEntries[idx].key != key {
		return 0.3 // defensive fallback; every real key is present at build time
	}
	return chartEntries[idx].strength
}

// pairStrength scores a pocket pair. Big pairs dominate; small pairs are
// worth a bit more than their high card alone thanks to set-mining equity.
func pairStrength(r card.Rank) float64 {
	return 0.5 + 0.5*float64(r-card.Two)/float64(card.Ace-card.Two)
}

// unpairedStrength scores two distinct ranks by high card, connectedness
// (gap), and suitedness, the factors spec'd for the preflop estimator.
func unpairedStrength(hi, lo card.Rank, suited bool) float64 {
	highCard := float64(hi-card.Two) / float64(card.Ace-card.Two)
	gap := int(hi - lo)
	connectedness := 1.0
	if gap > 1 {
		connectedness = 1.0 / float64(gap)
	}
	s := 0.15 + 0.45*highCard + 0.15*connectedness
	if suited {
		s += 0.08
	}
	if hi == card.Ace {
		s += 0.05 // ace-x hands flop top pair/nut-flush draws disproportionately
	}
	if s > 0.95 {
		s = 0.95
	}
	return s
}
