package round

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/draw"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

var one = decimal.NewFromInt(1)

// Settle closes the round now using the engine's random source. It is accepted
// in any phase with a non-empty unsettled pool and cancels a running countdown.
func (e *Engine) Settle(ctx context.Context) (*domain.SettlementResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, domain.ErrEngineStopped
	}
	return e.settleLocked(ctx, e.source, domain.DrawModeServer)
}

// SettleAt closes the round using an externally observed coordinate in [0, 1).
// Only engines configured for client draws accept it.
func (e *Engine) SettleAt(ctx context.Context, coordinate float64) (*domain.SettlementResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, domain.ErrEngineStopped
	}
	if e.cfg.DrawMode != domain.DrawModeClient {
		return nil, fmt.Errorf("%w: engine draws in %s mode", domain.ErrDrawModeMismatch, e.cfg.DrawMode)
	}
	if err := draw.ValidateSample(coordinate); err != nil {
		return nil, err
	}
	return e.settleLocked(ctx, func() float64 { return coordinate }, domain.DrawModeClient)
}

// settleLocked draws the winner and applies the ledger effect exactly once per
// round. Nothing is mutated until the draw has succeeded.
func (e *Engine) settleLocked(ctx context.Context, source draw.Source, mode domain.DrawMode) (*domain.SettlementResult, error) {
	if e.result != nil {
		return nil, fmt.Errorf("%w: "+ErrContextRound, domain.ErrDoubleSettlement, e.roundID)
	}

	contributions := e.pool.Snapshot()
	outcome, err := draw.Run(contributions, source)
	if err != nil {
		return nil, err
	}

	e.cancelCountdownLocked()
	e.phase = domain.PhaseSettling
	e.remaining = 0

	total := e.pool.Total()
	payout := total.Mul(one.Sub(e.cfg.CommissionRate))
	commission := total.Sub(payout)
	winner := outcome.Winner

	if err := e.ledger.Credit(winner.UserID, payout); err != nil {
		panic(fmt.Sprintf("%s: %v", PanicMsgCreditFailed, err))
	}

	effect := domain.LedgerEffect{
		Debited:        total,
		BalanceDeltas:  map[string]decimal.Decimal{winner.UserID: payout},
		ReferralDeltas: make(map[string]decimal.Decimal),
		Commission:     commission,
	}

	touched := make([]string, 0, len(contributions)+1)
	referrals := decimal.Zero
	for _, c := range contributions {
		touched = append(touched, c.UserID)

		referrerID, accrued, err := e.ledger.AccrueReferral(c.UserID, c.Amount)
		if err != nil {
			panic(fmt.Sprintf("%s: %v", PanicMsgAccrualFailed, err))
		}
		if referrerID == "" || !accrued.IsPositive() {
			continue
		}
		effect.ReferralDeltas[referrerID] = effect.ReferralDeltas[referrerID].Add(accrued)
		referrals = referrals.Add(accrued)
		touched = append(touched, referrerID)
	}

	revenue := commission.Sub(referrals)
	if revenue.IsNegative() {
		panic(fmt.Sprintf("%s: commission %s, referrals %s", PanicMsgNegativeRevenue, commission, referrals))
	}
	e.ledger.RecordRevenue(revenue)
	effect.Revenue = revenue

	settledAt := e.now()
	result := &domain.SettlementResult{
		RoundID:        e.roundID,
		WinnerID:       winner.UserID,
		WinnerName:     winner.Username,
		WinnerStake:    winner.Amount,
		WinnerColor:    winner.Color,
		Payout:         payout,
		TotalPool:      total,
		Sample:         outcome.Sample,
		RangeLow:       outcome.RangeLow,
		RangeHigh:      outcome.RangeHigh,
		Mode:           mode,
		Contributions:  contributions,
		Effect:         effect,
		SettledAt:      settledAt,
		CooldownEndsAt: settledAt.Add(e.cfg.Cooldown),
	}
	e.result = result
	e.scheduleCooldownLocked()

	logger.FromContext(ctx).Info(LogMsgRoundSettled,
		"round_id", e.roundID,
		"winner_id", winner.UserID,
		"payout", payout,
		"total_pool", total,
		"commission", commission,
		"sample", outcome.Sample,
		"mode", mode)

	e.publish(ctx, event.NewRoundSettledEvent(*result))
	e.publish(ctx, event.NewLedgerUpdatedEvent(e.ledger.Snapshot(touched...)))
	e.publishSnapshot(ctx)

	out := *result
	return &out, nil
}
