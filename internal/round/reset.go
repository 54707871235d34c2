package round

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// Reset abandons the current round and opens a fresh one. Stakes of a round that
// was not yet settled are credited back to their owners. Every pending timer is
// cancelled, so nothing scheduled for the old round fires into the new one.
func (e *Engine) Reset(ctx context.Context) (*domain.RoundReset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, domain.ErrEngineStopped
	}

	reset := &domain.RoundReset{
		RoundID:    e.roundID,
		WasSettled: e.result != nil,
	}

	var refunded []string
	if !reset.WasSettled && e.pool.Len() > 0 {
		reset.Refunds = make(map[string]decimal.Decimal, e.pool.Len())
		for _, c := range e.pool.Snapshot() {
			if err := e.ledger.Credit(c.UserID, c.Amount); err != nil {
				panic(fmt.Sprintf("%s: %v", PanicMsgRefundFailed, err))
			}
			reset.Refunds[c.UserID] = c.Amount
			refunded = append(refunded, c.UserID)
		}
	}

	e.startNewRoundLocked()
	reset.NextRound = e.roundID

	logger.FromContext(ctx).Info(LogMsgRoundReset,
		"round_id", reset.RoundID,
		"next_round_id", reset.NextRound,
		"was_settled", reset.WasSettled,
		"refunds", len(reset.Refunds))

	e.publish(ctx, event.NewRoundResetEvent(*reset))
	if len(refunded) > 0 {
		e.publish(ctx, event.NewLedgerUpdatedEvent(e.ledger.Snapshot(refunded...)))
	}
	e.publishSnapshot(ctx)

	return reset, nil
}
