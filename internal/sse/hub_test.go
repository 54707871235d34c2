package sse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case evt, ok := <-c.EventChannel:
		require.True(t, ok, "channel closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_BroadcastRespectsFilters(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	all := hub.Register(nil)
	ticksOnly := hub.Register([]string{"round.tick"})
	waitForClients(t, hub, 2)

	hub.Broadcast("round.snapshot", map[string]int{"remaining": 15})
	hub.Broadcast("round.tick", map[string]int{"remaining": 14})

	first := receive(t, all)
	second := receive(t, all)
	assert.Equal(t, "round.snapshot", first.Type)
	assert.Equal(t, "round.tick", second.Type)

	tick := receive(t, ticksOnly)
	assert.Equal(t, "round.tick", tick.Type)
	assert.NotEmpty(t, tick.ID)

	select {
	case evt := <-ticksOnly.EventChannel:
		t.Fatalf("unexpected event %s", evt.Type)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	c := hub.Register(nil)
	waitForClients(t, hub, 1)

	hub.Unregister(c.ID)
	waitForClients(t, hub, 0)

	_, ok := <-c.EventChannel
	assert.False(t, ok)
}

func TestHub_StopIsIdempotent(t *testing.T) {
	hub := NewHub()
	hub.Start()

	c := hub.Register(nil)
	waitForClients(t, hub, 1)

	hub.Stop()
	hub.Stop()

	_, ok := <-c.EventChannel
	assert.False(t, ok)
	assert.Nil(t, hub.Register(nil))
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_RegisterAfterStopReturnsNil(t *testing.T) {
	for i := 0; i < 200; i++ {
		hub := NewHub()
		hub.Start()
		hub.Stop()

		require.Nil(t, hub.Register(nil), "run %d", i)
		assert.Equal(t, 0, hub.ClientCount())
	}
}

func TestHub_RegisterRacingStopIsClosed(t *testing.T) {
	for i := 0; i < 100; i++ {
		hub := NewHub()
		hub.Start()

		clients := make(chan *Client, 1)
		go func() { clients <- hub.Register(nil) }()
		hub.Stop()

		c := <-clients
		if c == nil {
			continue
		}
		select {
		case _, ok := <-c.EventChannel:
			require.False(t, ok, "run %d: channel should be closed", i)
		case <-time.After(time.Second):
			t.Fatalf("run %d: client registered during Stop was never closed", i)
		}
	}
}

func TestClient_Wants(t *testing.T) {
	tests := []struct {
		name   string
		filter map[string]bool
		typ    string
		want   bool
	}{
		{"no filter", nil, "round.tick", true},
		{"listed", map[string]bool{"round.tick": true}, "round.tick", true},
		{"not listed", map[string]bool{"round.tick": true}, "round.settled", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{EventFilter: tt.filter}
			assert.Equal(t, tt.want, c.Wants(tt.typ))
		})
	}
}

func TestFormatSSEMessage(t *testing.T) {
	msg, err := FormatSSEMessage(Event{ID: "abc", Type: "round.tick", Timestamp: 1, Payload: map[string]int{"remaining": 3}})
	require.NoError(t, err)

	text := string(msg)
	assert.True(t, strings.HasPrefix(text, "id: abc\nevent: round.tick\ndata: "))
	assert.Contains(t, text, `"remaining":3`)
	assert.True(t, strings.HasSuffix(text, "\n\n"))
}
