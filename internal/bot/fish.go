package bot

import (
	"math/rand"

	"github.com/holdemtable/server/internal/table"
)

// decideFish implements the loose-passive policy: calls almost everything,
// raises rarely, and only folds when a big bet meets a genuinely weak hand.
func decideFish(rng *rand.Rand, opts options, strength float64) Decision {
	if opts.canCheck {
		if strength > 0.85 && opts.canRaise() && rng.Float64() < 0.2 {
			return Decision{Kind: openKind(opts), Amount: clampRaiseTo(opts, opts.currentBet+opts.pot/2)}
		}
		return Decision{Kind: table.Check}
	}

	betSize := fractionOf(opts.toCall, 0, opts.pot+opts.toCall)
	if strength < 0.15 && betSize > 0.5 {
		return Decision{Kind: table.Fold}
	}
	if strength > 0.9 && opts.canRaise() && rng.Float64() < 0.15 {
		return Decision{Kind: table.Raise, Amount: clampRaiseTo(opts, opts.minRaiseTo)}
	}
	return Decision{Kind: table.Call}
}
