package bot

import (
	"math/rand"

	"github.com/holdemtable/server/internal/table"
)

// decideTAG implements the tight-aggressive policy: folds most weak
// hands, raises strong ones sized to roughly two-thirds pot, and calls
// cheaply with medium strength rather than bleeding chips on a fold.
func decideTAG(rng *rand.Rand, opts options, strength float64, raisesThisRound int) Decision {
	const reRaiseCap = 2

	if opts.canCheck {
		if strength > 0.7 && opts.canRaise() && raisesThisRound < reRaiseCap {
			return Decision{Kind: openKind(opts), Amount: clampRaiseTo(opts, opts.currentBet+potFraction(opts.pot, 2, 3))}
		}
		return Decision{Kind: table.Check}
	}

	switch {
	case strength > 0.75 && opts.canRaise() && raisesThisRound < reRaiseCap:
		return Decision{Kind: table.Raise, Amount: clampRaiseTo(opts, opts.currentBet+potFraction(opts.pot+opts.toCall, 2, 3))}
	case strength > 0.35:
		return Decision{Kind: table.Call}
	case rng.Float64() < 0.45:
		// A fraction of borderline hands still call to avoid being
		// exploitably predictable.
		return Decision{Kind: table.Call}
	default:
		return Decision{Kind: table.Fold}
	}
}

// potFraction returns num/den of pot, used to size TAG's roughly
// two-thirds-pot raises.
func potFraction(pot, num, den int) int {
	return pot * num / den
}
