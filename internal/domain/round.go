package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Phase represents the current phase of a round
type Phase string

const (
	PhaseIdle      Phase = "Idle"
	PhaseAccepting Phase = "Accepting"
	PhaseLocked    Phase = "Locked"
	PhaseSettling  Phase = "Settling"
)

// AcceptsBets reports whether bets may be placed while the round is in this phase
func (p Phase) AcceptsBets() bool {
	return p == PhaseIdle || p == PhaseAccepting
}

// DrawMode selects who supplies the sample used to pick a winner
type DrawMode string

const (
	// DrawModeServer draws the sample from the engine's own random source
	DrawModeServer DrawMode = "server"
	// DrawModeClient waits for an externally observed coordinate once the round locks
	DrawModeClient DrawMode = "client"
)

// BetAllInKeyword is the literal accepted in place of an amount to stake the whole balance
const BetAllInKeyword = "max"

// MaxBetDecimalPlaces bounds the precision of a fixed stake
const MaxBetDecimalPlaces = 8

// BetKind distinguishes fixed-amount bets from all-in bets
type BetKind int

const (
	BetFixed BetKind = iota
	BetAllIn
)

// Bet is a stake request. AllIn resolves to the bettor's full balance at the
// instant the bet is placed.
type Bet struct {
	Kind   BetKind
	Amount decimal.Decimal
}

// FixedBet returns a bet for exactly amount
func FixedBet(amount decimal.Decimal) Bet {
	return Bet{Kind: BetFixed, Amount: amount}
}

// AllInBet returns a bet for the whole balance
func AllInBet() Bet {
	return Bet{Kind: BetAllIn}
}

// ParseBet turns a wire value ("12.5" or "max") into a Bet
func ParseBet(raw string) (Bet, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, BetAllInKeyword) {
		return AllInBet(), nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Bet{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return Bet{}, fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, amount)
	}
	if !amount.Equal(amount.Truncate(MaxBetDecimalPlaces)) {
		return Bet{}, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, amount, MaxBetDecimalPlaces)
	}
	return FixedBet(amount), nil
}

func (b Bet) String() string {
	if b.Kind == BetAllIn {
		return BetAllInKeyword
	}
	return b.Amount.String()
}

// Contribution is one participant's cumulative stake in the current round
type Contribution struct {
	UserID        string          `json:"user_id"`
	Username      string          `json:"username,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Color         string          `json:"color"`
	Probability   float64         `json:"probability"`
	ChancePercent string          `json:"chance"`
}

// RoundSnapshot is the arena state broadcast to clients
type RoundSnapshot struct {
	RoundID       uuid.UUID       `json:"round_id"`
	Phase         Phase           `json:"phase"`
	Contributions []Contribution  `json:"players"`
	TotalPool     decimal.Decimal `json:"total_bank"`
	Remaining     int             `json:"remaining"`
	WinnerID      string          `json:"winner_id,omitempty"`
}

// CountdownTick is broadcast once per countdown tick
type CountdownTick struct {
	RoundID   uuid.UUID `json:"round_id"`
	Remaining int       `json:"remaining"`
}

// BetReceipt describes an accepted bet
type BetReceipt struct {
	RoundID      uuid.UUID       `json:"round_id"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Contribution Contribution    `json:"contribution"`
	TotalPool    decimal.Decimal `json:"total_bank"`
	Phase        Phase           `json:"phase"`
}

// BetRejection describes a refused bet
type BetRejection struct {
	RoundID uuid.UUID `json:"round_id"`
	UserID  string    `json:"user_id"`
	Bet     string    `json:"bet"`
	Reason  string    `json:"reason"`
}

// LedgerEffect is the net effect of one settlement on the ledger
type LedgerEffect struct {
	// Debited is the stake removed from bettors over the round; it equals the total pool
	Debited decimal.Decimal `json:"debited"`
	// BalanceDeltas maps user IDs to balance credited at settlement
	BalanceDeltas map[string]decimal.Decimal `json:"balance_deltas"`
	// ReferralDeltas maps referrer IDs to pending commission accrued at settlement
	ReferralDeltas map[string]decimal.Decimal `json:"referral_deltas,omitempty"`
	// Commission is the part of the pool not paid to the winner
	Commission decimal.Decimal `json:"commission"`
	// Revenue is commission minus referral accrual
	Revenue decimal.Decimal `json:"revenue"`
}

// Credited returns the sum of all balance and referral deltas
func (e LedgerEffect) Credited() decimal.Decimal {
	total := decimal.Zero
	for _, d := range e.BalanceDeltas {
		total = total.Add(d)
	}
	for _, d := range e.ReferralDeltas {
		total = total.Add(d)
	}
	return total
}

// SettlementResult is the settlement announcement of a round
type SettlementResult struct {
	RoundID        uuid.UUID       `json:"round_id"`
	WinnerID       string          `json:"winner_id"`
	WinnerName     string          `json:"winner_name,omitempty"`
	WinnerStake    decimal.Decimal `json:"winner_stake"`
	WinnerColor    string          `json:"winner_color"`
	Payout         decimal.Decimal `json:"payout"`
	TotalPool      decimal.Decimal `json:"total_bank"`
	Sample         float64         `json:"sample"`
	RangeLow       float64         `json:"range_low"`
	RangeHigh      float64         `json:"range_high"`
	Mode           DrawMode        `json:"mode"`
	Contributions  []Contribution  `json:"players"`
	Effect         LedgerEffect    `json:"effect"`
	SettledAt      time.Time       `json:"settled_at"`
	CooldownEndsAt time.Time       `json:"cooldown_ends_at"`
}

// RoundReset describes an administrative reset
type RoundReset struct {
	RoundID    uuid.UUID                  `json:"round_id"`
	NextRound  uuid.UUID                  `json:"next_round_id"`
	Refunds    map[string]decimal.Decimal `json:"refunds,omitempty"`
	WasSettled bool                       `json:"was_settled"`
}

// LedgerUpdate carries fresh copies of the users touched by an operation
type LedgerUpdate struct {
	Users []User `json:"users"`
}

// ReferralClaim describes a referral commission payout
type ReferralClaim struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}
