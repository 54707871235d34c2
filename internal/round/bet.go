package round

import (
	"context"
	"fmt"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// PlaceBet debits the bet from the user and adds it to the current round. A bet
// that brings the round to the minimum number of participants starts the
// countdown; later bets never touch it. A rejected bet changes nothing.
func (e *Engine) PlaceBet(ctx context.Context, userID string, bet domain.Bet) (*domain.BetReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil, domain.ErrEngineStopped
	}

	receipt, err := e.placeBetLocked(ctx, userID, bet)
	if err != nil {
		logger.FromContext(ctx).Info(LogMsgBetRejected,
			"round_id", e.roundID,
			"user_id", userID,
			"bet", bet.String(),
			"error", err)
		e.publish(ctx, event.NewBetRejectedEvent(domain.BetRejection{
			RoundID: e.roundID,
			UserID:  userID,
			Bet:     bet.String(),
			Reason:  err.Error(),
		}))
		return nil, err
	}
	return receipt, nil
}

func (e *Engine) placeBetLocked(ctx context.Context, userID string, bet domain.Bet) (*domain.BetReceipt, error) {
	if !e.phase.AcceptsBets() {
		return nil, fmt.Errorf("%w: "+ErrContextPhase, domain.ErrRoundNotAcceptingBets, e.phase)
	}

	user, err := e.ledger.Get(userID)
	if err != nil {
		return nil, err
	}

	amount, err := e.ledger.Debit(userID, bet)
	if err != nil {
		return nil, err
	}

	contribution, joined, err := e.pool.Add(userID, user.Name, amount)
	if err != nil {
		// unreachable after a positive debit; refund to keep the ledger whole
		if creditErr := e.ledger.Credit(userID, amount); creditErr != nil {
			panic(fmt.Sprintf("%s: %v", PanicMsgRefundFailed, creditErr))
		}
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info(LogMsgBetPlaced,
		"round_id", e.roundID,
		"user_id", userID,
		"amount", amount,
		"joined", joined,
		"total_pool", e.pool.Total())

	if e.phase == domain.PhaseIdle && e.pool.Len() >= e.cfg.MinParticipants {
		e.phase = domain.PhaseAccepting
		e.startCountdownLocked()
		log.Info(LogMsgCountdownStarted,
			"round_id", e.roundID,
			"ticks", e.cfg.CountdownTicks,
			"interval", e.cfg.TickInterval)
	}

	receipt := &domain.BetReceipt{
		RoundID:      e.roundID,
		UserID:       userID,
		Amount:       amount,
		Contribution: contribution,
		TotalPool:    e.pool.Total(),
		Phase:        e.phase,
	}

	e.publishSnapshot(ctx)
	e.publish(ctx, event.NewBetPlacedEvent(*receipt))
	e.publish(ctx, event.NewLedgerUpdatedEvent(e.ledger.Snapshot(userID)))

	return receipt, nil
}
