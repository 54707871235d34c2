// Package round runs the jackpot round state machine: it accepts bets into the
// pool, drives the countdown, settles through the draw and cools down into a
// fresh round.
package round

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/draw"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/logger"
	"github.com/osse101/JackpotArena_Go/internal/pool"
	"github.com/osse101/JackpotArena_Go/internal/scheduler"
)

// Service defines the interface for round operations
type Service interface {
	PlaceBet(ctx context.Context, userID string, bet domain.Bet) (*domain.BetReceipt, error)
	Settle(ctx context.Context) (*domain.SettlementResult, error)
	SettleAt(ctx context.Context, coordinate float64) (*domain.SettlementResult, error)
	Reset(ctx context.Context) (*domain.RoundReset, error)
	ClaimReferral(ctx context.Context, userID string) (*domain.ReferralClaim, error)
	Snapshot(ctx context.Context) domain.RoundSnapshot
	Shutdown(ctx context.Context) error
}

// Ledger is the subset of ledger operations the engine needs
type Ledger interface {
	Get(id string) (domain.User, error)
	Debit(id string, bet domain.Bet) (decimal.Decimal, error)
	Credit(id string, amount decimal.Decimal) error
	AccrueReferral(contributorID string, stake decimal.Decimal) (string, decimal.Decimal, error)
	Claim(id string) (decimal.Decimal, error)
	RecordRevenue(amount decimal.Decimal)
	Snapshot(ids ...string) []domain.User
}

// Config holds round timing and economics
type Config struct {
	CountdownTicks  int
	TickInterval    time.Duration
	Cooldown        time.Duration
	MinParticipants int
	CommissionRate  decimal.Decimal
	DrawMode        domain.DrawMode
}

// DefaultConfig returns the standard arena settings
func DefaultConfig() Config {
	return Config{
		CountdownTicks:  DefaultCountdownTicks,
		TickInterval:    DefaultTickInterval,
		Cooldown:        DefaultCooldown,
		MinParticipants: DefaultMinParticipants,
		CommissionRate:  decimal.RequireFromString(DefaultCommissionRate),
		DrawMode:        domain.DrawModeServer,
	}
}

// Engine owns the current round. Every operation and every timer callback runs
// under mu, so each transition is atomic.
//
// Events are published while mu is held. Bus handlers must not call back into
// the engine.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	ledger Ledger
	sched  scheduler.Scheduler
	bus    event.Bus
	source draw.Source
	now    func() time.Time

	roundID   uuid.UUID
	phase     domain.Phase
	pool      *pool.Pool
	remaining int
	result    *domain.SettlementResult

	// tokens identify the live countdown and cooldown; a callback carrying an
	// older token is stale and does nothing
	tokens         uint64
	countdown      scheduler.Handle
	countdownToken uint64
	cooldown       scheduler.Handle
	cooldownToken  uint64

	stopped bool
}

// NewEngine creates an engine with an empty round in Idle. bus may be nil.
func NewEngine(cfg Config, ledger Ledger, sched scheduler.Scheduler, bus event.Bus, source draw.Source) *Engine {
	e := &Engine{
		cfg:    cfg,
		ledger: ledger,
		sched:  sched,
		bus:    bus,
		source: source,
		now:    time.Now,
		pool:   pool.New(),
	}
	e.startNewRoundLocked()
	return e
}

// Snapshot returns the current arena state
func (e *Engine) Snapshot(ctx context.Context) domain.RoundSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// ClaimReferral pays out the user's pending referral commission. With nothing
// pending it returns a zero claim and changes nothing.
func (e *Engine) ClaimReferral(ctx context.Context, userID string) (*domain.ReferralClaim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, domain.ErrEngineStopped
	}

	amount, err := e.ledger.Claim(userID)
	if err != nil {
		return nil, err
	}

	claim := &domain.ReferralClaim{UserID: userID, Amount: amount}
	if amount.IsPositive() {
		logger.FromContext(ctx).Info(LogMsgReferralClaimed, "user_id", userID, "amount", amount)
		e.publish(ctx, event.NewReferralClaimedEvent(*claim))
		e.publish(ctx, event.NewLedgerUpdatedEvent(e.ledger.Snapshot(userID)))
	}
	return claim, nil
}

// Shutdown cancels all timers. Every later call returns ErrEngineStopped.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return fmt.Errorf("%w: %s", domain.ErrEngineStopped, ErrContextEngineState)
	}
	e.stopped = true
	e.cancelCountdownLocked()
	e.cancelCooldownLocked()

	logger.FromContext(ctx).Info(LogMsgEngineStopped, "round_id", e.roundID)
	return nil
}

// CheckHealth reports whether the engine still accepts operations
func (e *Engine) CheckHealth(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return domain.ErrEngineStopped
	}
	return nil
}

func (e *Engine) snapshotLocked() domain.RoundSnapshot {
	s := domain.RoundSnapshot{
		RoundID:       e.roundID,
		Phase:         e.phase,
		Contributions: e.pool.Snapshot(),
		TotalPool:     e.pool.Total(),
		Remaining:     e.remaining,
	}
	if e.result != nil {
		s.WinnerID = e.result.WinnerID
	}
	return s
}

func (e *Engine) nextToken() uint64 {
	e.tokens++
	return e.tokens
}

func (e *Engine) publish(ctx context.Context, evt event.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}

func (e *Engine) publishSnapshot(ctx context.Context) {
	e.publish(ctx, event.NewRoundSnapshotEvent(e.snapshotLocked()))
}
