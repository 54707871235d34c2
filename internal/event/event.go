package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/osse101/JackpotArena_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Round and ledger event types
const (
	RoundSnapshot   Type = Type(domain.EventTypeRoundSnapshot)
	RoundTick       Type = Type(domain.EventTypeRoundTick)
	BetPlaced       Type = Type(domain.EventTypeBetPlaced)
	BetRejected     Type = Type(domain.EventTypeBetRejected)
	RoundSettled    Type = Type(domain.EventTypeRoundSettled)
	RoundReset      Type = Type(domain.EventTypeRoundReset)
	LedgerUpdated   Type = Type(domain.EventTypeLedgerUpdated)
	ReferralClaimed Type = Type(domain.EventTypeReferralClaimed)
)

// RoundTypes lists every event type the round engine publishes, in no particular order
var RoundTypes = []Type{
	RoundSnapshot,
	RoundTick,
	BetPlaced,
	BetRejected,
	RoundSettled,
	RoundReset,
	LedgerUpdated,
	ReferralClaimed,
}

func roundMetadata(roundID uuid.UUID) Metadata {
	return map[string]interface{}{
		MetadataKeyRoundID: roundID.String(),
	}
}

// NewRoundSnapshotEvent creates a snapshot event
func NewRoundSnapshotEvent(s domain.RoundSnapshot) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     RoundSnapshot,
		Payload:  s,
		Metadata: roundMetadata(s.RoundID),
	}
}

// NewRoundTickEvent creates a countdown tick event
func NewRoundTickEvent(tick domain.CountdownTick) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     RoundTick,
		Payload:  tick,
		Metadata: roundMetadata(tick.RoundID),
	}
}

// NewBetPlacedEvent creates an event for an accepted bet
func NewBetPlacedEvent(receipt domain.BetReceipt) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     BetPlaced,
		Payload:  receipt,
		Metadata: roundMetadata(receipt.RoundID),
	}
}

// NewBetRejectedEvent creates an event for a refused bet
func NewBetRejectedEvent(rejection domain.BetRejection) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     BetRejected,
		Payload:  rejection,
		Metadata: roundMetadata(rejection.RoundID),
	}
}

// NewRoundSettledEvent creates a settlement event
func NewRoundSettledEvent(result domain.SettlementResult) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     RoundSettled,
		Payload:  result,
		Metadata: roundMetadata(result.RoundID),
	}
}

// NewRoundResetEvent creates an administrative reset event
func NewRoundResetEvent(reset domain.RoundReset) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     RoundReset,
		Payload:  reset,
		Metadata: roundMetadata(reset.RoundID),
	}
}

// NewLedgerUpdatedEvent carries fresh copies of touched users
func NewLedgerUpdatedEvent(users []domain.User) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LedgerUpdated,
		Payload: domain.LedgerUpdate{Users: users},
	}
}

// NewReferralClaimedEvent creates a referral payout event
func NewReferralClaimedEvent(claim domain.ReferralClaim) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ReferralClaimed,
		Payload: claim,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus. Handlers run
// synchronously on the publisher's goroutine in subscription order.
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll subscribes handler to each of the given types
func SubscribeAll(bus Bus, types []Type, handler Handler) {
	for _, t := range types {
		bus.Subscribe(t, handler)
	}
}
