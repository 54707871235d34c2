package round

import "time"

// Default round timing and economics
const (
	DefaultCountdownTicks  = 15
	DefaultTickInterval    = time.Second
	DefaultCooldown        = 4 * time.Second
	DefaultMinParticipants = 2
	DefaultCommissionRate  = "0.05"
)

// Log messages
const (
	LogMsgBetPlaced          = "Bet placed"
	LogMsgBetRejected        = "Bet rejected"
	LogMsgCountdownStarted   = "Countdown started"
	LogMsgRoundLocked        = "Round locked"
	LogMsgAwaitingCoordinate = "Round locked, awaiting draw coordinate"
	LogMsgRoundSettled       = "Round settled"
	LogMsgAutoSettleFailed   = "Automatic settlement failed"
	LogMsgNewRound           = "New round started"
	LogMsgRoundReset         = "Round reset"
	LogMsgReferralClaimed    = "Referral commission claimed"
	LogMsgPublishFailed      = "Failed to publish round event"
	LogMsgEngineStopped      = "Round engine stopped"
)

// Error contexts used when wrapping sentinel errors
const (
	ErrContextPhase       = "phase %s"
	ErrContextRound       = "round %s"
	ErrContextEngineState = "engine already stopped"
)

// Invariant violations
const (
	PanicMsgCreditFailed    = "round invariant violated: settlement credit failed"
	PanicMsgRefundFailed    = "round invariant violated: refund credit failed"
	PanicMsgAccrualFailed   = "round invariant violated: referral accrual failed"
	PanicMsgNegativeRevenue = "round invariant violated: referral accrual exceeds commission"
)
