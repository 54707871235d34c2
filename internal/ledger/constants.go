package ledger

// Default policy values
const (
	DefaultStartingBalance = "50"
	DefaultReferralRate    = "0.05"
	DefaultReferralShare   = "0.10"
)

// Error messages local to the ledger
const (
	ErrMsgEmptyUserID = "user id is required"
)

// Invariant violations
const (
	PanicMsgNegativeBalance = "ledger invariant violated: negative balance"
	PanicMsgNegativeRevenue = "ledger invariant violated: negative revenue"
)
