package domain

// Event type constants published by the round engine on the event bus.
// Subscribers (SSE hub, metrics collector, settlement history) consume them.
//
// Event types follow the pattern: <entity>.<action> (e.g., "round.settled")
const (
	// EventTypeRoundSnapshot carries the full arena state after any pool or phase change
	EventTypeRoundSnapshot = "round.snapshot"

	// EventTypeRoundTick is published once per countdown tick
	EventTypeRoundTick = "round.tick"

	// EventTypeBetPlaced is published after a bet was debited and added to the pool
	EventTypeBetPlaced = "round.bet_placed"

	// EventTypeBetRejected is published when a bet was refused without any state change
	EventTypeBetRejected = "round.bet_rejected"

	// EventTypeRoundSettled carries the settlement announcement
	EventTypeRoundSettled = "round.settled"

	// EventTypeRoundReset is published when a round was reset administratively
	EventTypeRoundReset = "round.reset"

	// EventTypeLedgerUpdated carries fresh balances of the users affected by an operation
	EventTypeLedgerUpdated = "ledger.updated"

	// EventTypeReferralClaimed is published when pending referral commission was paid out
	EventTypeReferralClaimed = "ledger.referral_claimed"
)
