package sse

import (
	"context"
	"log/slog"

	"github.com/osse101/JackpotArena_Go/internal/event"
)

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{
		hub: hub,
		bus: bus,
	}
}

// Subscribe forwards every round and ledger event to the hub
func (s *Subscriber) Subscribe() {
	event.SubscribeAll(s.bus, event.RoundTypes, s.forward)

	types := make([]string, 0, len(event.RoundTypes))
	for _, t := range event.RoundTypes {
		types = append(types, string(t))
	}
	slog.Info(LogMsgSubscriberReady, "types", types)
}

// forward never blocks the publisher; Broadcast drops when the hub is saturated
func (s *Subscriber) forward(_ context.Context, evt event.Event) error {
	s.hub.Broadcast(string(evt.Type), evt.Payload)
	slog.Debug(LogMsgEventBroadcast, "event_type", evt.Type)
	return nil
}
