package bot

import (
	"math/rand"

	"github.com/holdemtable/server/internal/table"
)

// decideLAG implements the loose-aggressive policy: plays most hands,
// raises often (including bluffs with weak holdings), but stops
// re-raising once reRaiseCap is hit for the round so two LAGs can't loop
// forever.
func decideLAG(rng *rand.Rand, opts options, strength float64, raisesThisRound int) Decision {
	const reRaiseCap = 3
	canReRaise := opts.canRaise() && raisesThisRound < reRaiseCap

	if opts.canCheck {
		if canReRaise && (strength > 0.55 || rng.Float64() < 0.3) {
			return Decision{Kind: openKind(opts), Amount: clampRaiseTo(opts, opts.currentBet+potFraction(opts.pot, 3, 4))}
		}
		return Decision{Kind: table.Check}
	}

	switch {
	case canReRaise && (strength > 0.6 || rng.Float64() < 0.2):
		return Decision{Kind: table.Raise, Amount: clampRaiseTo(opts, opts.currentBet+potFraction(opts.pot+opts.toCall, 3, 4))}
	case strength > 0.12 || rng.Float64() < 0.5:
		return Decision{Kind: table.Call}
	default:
		return Decision{Kind: table.Fold}
	}
}
