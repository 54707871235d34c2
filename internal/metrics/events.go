package metrics

import (
	"context"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all round events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	event.SubscribeAll(bus, event.RoundTypes, e.HandleEvent)
	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	var err error
	switch evt.Type {
	case event.RoundSnapshot:
		var s domain.RoundSnapshot
		if s, err = event.DecodePayload[domain.RoundSnapshot](evt.Payload); err == nil {
			PoolSize.Set(s.TotalPool.InexactFloat64())
			Participants.Set(float64(len(s.Contributions)))
			CountdownRemaining.Set(float64(s.Remaining))
		}

	case event.RoundTick:
		var tick domain.CountdownTick
		if tick, err = event.DecodePayload[domain.CountdownTick](evt.Payload); err == nil {
			CountdownRemaining.Set(float64(tick.Remaining))
		}

	case event.BetPlaced:
		var receipt domain.BetReceipt
		if receipt, err = event.DecodePayload[domain.BetReceipt](evt.Payload); err == nil {
			BetsPlaced.Inc()
			BetVolume.Add(receipt.Amount.InexactFloat64())
		}

	case event.BetRejected:
		BetsRejected.Inc()

	case event.RoundSettled:
		var result domain.SettlementResult
		if result, err = event.DecodePayload[domain.SettlementResult](evt.Payload); err == nil {
			RoundsSettled.WithLabelValues(string(result.Mode)).Inc()
			PayoutTotal.Add(result.Payout.InexactFloat64())
			CommissionTotal.Add(result.Effect.Commission.InexactFloat64())
			RevenueTotal.Add(result.Effect.Revenue.InexactFloat64())
			for _, accrued := range result.Effect.ReferralDeltas {
				ReferralAccrued.Add(accrued.InexactFloat64())
			}
		}

	case event.RoundReset:
		RoundResets.Inc()

	case event.ReferralClaimed:
		var claim domain.ReferralClaim
		if claim, err = event.DecodePayload[domain.ReferralClaim](evt.Payload); err == nil {
			ReferralClaimed.Add(claim.Amount.InexactFloat64())
		}
	}

	if err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgEventPayloadDecode, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
