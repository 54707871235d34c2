package pool

// Palette is the slot colour sequence; contributions take colours by insertion index
var Palette = []string{"#00ff66", "#ff0066", "#00ccff", "#ffcc00", "#9900ff", "#ff6600"}

// ProbabilityTolerance is the allowed drift of the probability sum away from 1
const ProbabilityTolerance = 1e-9

// ChanceDecimalPlaces is the precision of the percentage shown to clients
const ChanceDecimalPlaces = 1

// Invariant violation messages. Hitting one means the ledger or pool is corrupt.
const (
	PanicMsgNegativePool      = "pool invariant violated: negative total"
	PanicMsgTotalMismatch     = "pool invariant violated: total differs from sum of contributions"
	PanicMsgProbabilitySum    = "pool invariant violated: probabilities do not sum to 1"
	PanicMsgAmountNotPositive = "pool invariant violated: non-positive contribution"
)
