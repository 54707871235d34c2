package round

import (
	"context"

	"github.com/google/uuid"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// startCountdownLocked replaces any running countdown with a fresh one
func (e *Engine) startCountdownLocked() {
	e.cancelCountdownLocked()

	e.remaining = e.cfg.CountdownTicks
	token := e.nextToken()
	e.countdownToken = token
	e.countdown = e.sched.Every(e.cfg.TickInterval, func() { e.onTick(token) })
}

func (e *Engine) cancelCountdownLocked() {
	if e.countdown != nil {
		e.countdown.Cancel()
		e.countdown = nil
	}
	e.countdownToken = 0
}

func (e *Engine) cancelCooldownLocked() {
	if e.cooldown != nil {
		e.cooldown.Cancel()
		e.cooldown = nil
	}
	e.cooldownToken = 0
}

func (e *Engine) onTick(token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || token == 0 || token != e.countdownToken || e.phase != domain.PhaseAccepting {
		return
	}

	ctx := context.Background()

	e.remaining--
	e.publish(ctx, event.NewRoundTickEvent(domain.CountdownTick{
		RoundID:   e.roundID,
		Remaining: e.remaining,
	}))
	if e.remaining > 0 {
		return
	}

	e.cancelCountdownLocked()
	e.phase = domain.PhaseLocked

	log := logger.FromContext(ctx)
	if e.cfg.DrawMode == domain.DrawModeClient {
		log.Info(LogMsgAwaitingCoordinate, "round_id", e.roundID, "total_pool", e.pool.Total())
		e.publishSnapshot(ctx)
		return
	}

	log.Info(LogMsgRoundLocked, "round_id", e.roundID, "participants", e.pool.Len())
	if _, err := e.settleLocked(ctx, e.source, domain.DrawModeServer); err != nil {
		log.Error(LogMsgAutoSettleFailed, "round_id", e.roundID, "error", err)
	}
}

func (e *Engine) scheduleCooldownLocked() {
	e.cancelCooldownLocked()

	token := e.nextToken()
	e.cooldownToken = token
	e.cooldown = e.sched.After(e.cfg.Cooldown, func() { e.onCooldown(token) })
}

func (e *Engine) onCooldown(token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || token == 0 || token != e.cooldownToken {
		return
	}

	ctx := context.Background()
	e.startNewRoundLocked()
	logger.FromContext(ctx).Info(LogMsgNewRound, "round_id", e.roundID)
	e.publishSnapshot(ctx)
}

// startNewRoundLocked drops the current round and opens an empty one in Idle
func (e *Engine) startNewRoundLocked() {
	e.cancelCountdownLocked()
	e.cancelCooldownLocked()

	e.pool.Reset()
	e.roundID = uuid.New()
	e.phase = domain.PhaseIdle
	e.remaining = 0
	e.result = nil
}
