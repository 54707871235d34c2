package round

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/ledger"
	"github.com/osse101/JackpotArena_Go/internal/scheduler"
	"github.com/osse101/JackpotArena_Go/internal/utils"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recorder captures every round event published on the bus
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) handle(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(t event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t event.Type) (event.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return event.Event{}, false
}

type fixture struct {
	engine *Engine
	ledger *ledger.Ledger
	clock  *scheduler.Manual
	events *recorder
}

func newFixture(t *testing.T, mode domain.DrawMode, samples ...float64) *fixture {
	t.Helper()

	l := ledger.New(ledger.Config{
		StartingBalance: d(ledger.DefaultStartingBalance),
		ReferralEnabled: true,
		ReferralRate:    d(ledger.DefaultReferralRate),
		ReferralShare:   d(ledger.DefaultReferralShare),
	})
	for _, id := range []string{"alice", "bob", "carol"} {
		_, _, err := l.Register(id, id, "")
		require.NoError(t, err)
	}

	clock := scheduler.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	bus := event.NewMemoryBus()
	rec := &recorder{}
	event.SubscribeAll(bus, event.RoundTypes, rec.handle)

	cfg := DefaultConfig()
	cfg.DrawMode = mode

	e := NewEngine(cfg, l, clock, bus, utils.FixedFloats(samples...))
	e.now = clock.Now

	return &fixture{engine: e, ledger: l, clock: clock, events: rec}
}

func (f *fixture) bet(t *testing.T, userID, amount string) *domain.BetReceipt {
	t.Helper()
	bet, err := domain.ParseBet(amount)
	require.NoError(t, err)
	receipt, err := f.engine.PlaceBet(context.Background(), userID, bet)
	require.NoError(t, err)
	return receipt
}

func (f *fixture) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	u, err := f.ledger.Get(userID)
	require.NoError(t, err)
	return u.Balance
}

func TestScenario_TwoBettorsSettle(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.20)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "30")

	snap := f.engine.Snapshot(ctx)
	require.Len(t, snap.Contributions, 2)
	assert.Equal(t, domain.PhaseAccepting, snap.Phase)
	assert.True(t, snap.TotalPool.Equal(d("40")))
	assert.InDelta(t, 0.25, snap.Contributions[0].Probability, 1e-9)
	assert.InDelta(t, 0.75, snap.Contributions[1].Probability, 1e-9)
	assert.Equal(t, "25.0", snap.Contributions[0].ChancePercent)
	assert.Equal(t, DefaultCountdownTicks, snap.Remaining)

	f.clock.Advance(DefaultCountdownTicks * DefaultTickInterval)

	evt, ok := f.events.last(event.RoundSettled)
	require.True(t, ok)
	result := evt.Payload.(domain.SettlementResult)
	assert.Equal(t, "alice", result.WinnerID)
	assert.True(t, result.Payout.Equal(d("38")), "payout %s", result.Payout)
	assert.True(t, result.WinnerStake.Equal(d("10")))
	assert.True(t, result.Effect.Commission.Equal(d("2")))
	assert.InDelta(t, 0.20, result.Sample, 1e-12)
	assert.Equal(t, 0.0, result.RangeLow)
	assert.InDelta(t, 0.25, result.RangeHigh, 1e-9)

	assert.True(t, f.balance(t, "alice").Equal(d("78")))
	assert.True(t, f.balance(t, "bob").Equal(d("20")))
	assert.Equal(t, domain.PhaseSettling, f.engine.Snapshot(ctx).Phase)
	assert.Equal(t, DefaultCountdownTicks, f.events.count(event.RoundTick))
}

func TestSingleBettorNeverStartsCountdown(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.5)

	f.bet(t, "alice", "10")
	f.bet(t, "alice", "5")
	f.clock.Advance(time.Minute)

	snap := f.engine.Snapshot(context.Background())
	assert.Equal(t, domain.PhaseIdle, snap.Phase)
	assert.Equal(t, 0, snap.Remaining)
	assert.True(t, snap.TotalPool.Equal(d("15")))
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, 0, f.events.count(event.RoundTick))
}

func TestThirdBetDoesNotExtendCountdown(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.99)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "10")
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, DefaultCountdownTicks-5, f.engine.Snapshot(ctx).Remaining)

	receipt := f.bet(t, "carol", "20")
	assert.Equal(t, domain.PhaseAccepting, receipt.Phase)
	assert.Equal(t, DefaultCountdownTicks-5, f.engine.Snapshot(ctx).Remaining)
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(time.Duration(DefaultCountdownTicks-6) * time.Second)
	assert.Equal(t, domain.PhaseAccepting, f.engine.Snapshot(ctx).Phase)
	assert.Equal(t, 1, f.engine.Snapshot(ctx).Remaining)

	f.clock.Advance(time.Second)
	evt, ok := f.events.last(event.RoundSettled)
	require.True(t, ok)
	assert.Equal(t, "carol", evt.Payload.(domain.SettlementResult).WinnerID)
}

func TestBetDuringSettlingRejected(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.1)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "10")
	f.clock.Advance(DefaultCountdownTicks * DefaultTickInterval)

	before := f.engine.Snapshot(ctx)
	require.Equal(t, domain.PhaseSettling, before.Phase)
	carolBefore := f.balance(t, "carol")

	_, err := f.engine.PlaceBet(ctx, "carol", domain.FixedBet(d("5")))
	assert.ErrorIs(t, err, domain.ErrRoundNotAcceptingBets)

	after := f.engine.Snapshot(ctx)
	assert.Equal(t, before.Contributions, after.Contributions)
	assert.True(t, after.TotalPool.Equal(before.TotalPool))
	assert.True(t, f.balance(t, "carol").Equal(carolBefore))
	assert.Equal(t, 1, f.events.count(event.BetRejected))
}

func TestBetDuringLockedRejected(t *testing.T) {
	f := newFixture(t, domain.DrawModeClient)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "10")
	f.clock.Advance(DefaultCountdownTicks * DefaultTickInterval)
	require.Equal(t, domain.PhaseLocked, f.engine.Snapshot(ctx).Phase)

	_, err := f.engine.PlaceBet(ctx, "carol", domain.AllInBet())
	assert.ErrorIs(t, err, domain.ErrRoundNotAcceptingBets)
	assert.True(t, f.balance(t, "carol").Equal(d("50")))
}

func TestRejectedBetsLeaveNoTrace(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		bet     domain.Bet
		wantErr error
	}{
		{"unknown user", "ghost", domain.FixedBet(d("1")), domain.ErrUserNotFound},
		{"over balance", "alice", domain.FixedBet(d("50.5")), domain.ErrInsufficientBalance},
		{"zero", "alice", domain.FixedBet(decimal.Zero), domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.DrawModeServer, 0.5)
			ctx := context.Background()

			_, err := f.engine.PlaceBet(ctx, tt.userID, tt.bet)
			assert.ErrorIs(t, err, tt.wantErr)

			snap := f.engine.Snapshot(ctx)
			assert.Empty(t, snap.Contributions)
			assert.True(t, snap.TotalPool.IsZero())
			assert.True(t, f.balance(t, "alice").Equal(d("50")))
			assert.Equal(t, 1, f.events.count(event.BetRejected))
			assert.Equal(t, 0, f.events.count(event.BetPlaced))
		})
	}
}

func TestAllInBet(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.5)

	receipt := f.bet(t, "alice", "max")
	assert.True(t, receipt.Amount.Equal(d("50")))
	assert.True(t, f.balance(t, "alice").IsZero())

	_, err := f.engine.PlaceBet(context.Background(), "alice", domain.AllInBet())
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestSettlementExactlyOnce(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.3)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "30")
	first, err := f.engine.Settle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", first.WinnerID)

	balances := f.ledger.Snapshot()
	revenue := f.ledger.Revenue()

	_, err = f.engine.Settle(ctx)
	assert.ErrorIs(t, err, domain.ErrDoubleSettlement)

	// the countdown that was cancelled by the forced settle never fires
	f.clock.Advance(2 * time.Second)
	assert.Equal(t, balances, f.ledger.Snapshot())
	assert.True(t, revenue.Equal(f.ledger.Revenue()))
	assert.Equal(t, 1, f.events.count(event.RoundSettled))
	assert.Equal(t, 0, f.events.count(event.RoundTick))
}

func TestSettle_EmptyAndSingle(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.999)
	ctx := context.Background()

	_, err := f.engine.Settle(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveRound)

	f.bet(t, "alice", "20")
	result, err := f.engine.Settle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.WinnerID)
	assert.True(t, result.Payout.Equal(d("19")))
	assert.True(t, f.balance(t, "alice").Equal(d("49")))
}

func TestConservation(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.1, 0.6, 0.95)
	ctx := context.Background()

	_, _, err := f.ledger.Register("dave", "dave", "alice")
	require.NoError(t, err)
	initial := f.ledger.Holdings()

	for round := 0; round < 3; round++ {
		f.bet(t, "alice", "3.33")
		f.bet(t, "bob", "7")
		f.bet(t, "dave", "1.01")

		poolTotal := f.engine.Snapshot(ctx).TotalPool
		f.clock.Advance(DefaultCountdownTicks * DefaultTickInterval)

		evt, ok := f.events.last(event.RoundSettled)
		require.True(t, ok)
		result := evt.Payload.(domain.SettlementResult)
		assert.True(t, result.Effect.Debited.Equal(poolTotal))
		assert.True(t, result.Effect.Credited().LessThanOrEqual(poolTotal))
		assert.True(t, result.Effect.Credited().Add(result.Effect.Revenue).Equal(poolTotal))

		f.clock.Advance(DefaultCooldown)
		assert.Equal(t, domain.PhaseIdle, f.engine.Snapshot(ctx).Phase)
	}

	assert.True(t, f.ledger.Holdings().Add(f.ledger.Revenue()).Equal(initial),
		"holdings %s revenue %s initial %s", f.ledger.Holdings(), f.ledger.Revenue(), initial)
	assert.Equal(t, 3, f.events.count(event.RoundSettled))
}

func TestReferralAccrualAndClaim(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.9)
	ctx := context.Background()

	_, _, err := f.ledger.Register("dave", "dave", "alice")
	require.NoError(t, err)

	f.bet(t, "bob", "10")
	f.bet(t, "dave", "30")

	result, err := f.engine.Settle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dave", result.WinnerID)
	require.Contains(t, result.Effect.ReferralDeltas, "alice")
	assert.True(t, result.Effect.ReferralDeltas["alice"].Equal(d("0.15")))
	assert.True(t, result.Effect.Revenue.Equal(d("1.85")))

	claim, err := f.engine.ClaimReferral(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, claim.Amount.Equal(d("0.15")))
	assert.True(t, f.balance(t, "alice").Equal(d("50.15")))
	assert.Equal(t, 1, f.events.count(event.ReferralClaimed))

	// nothing pending: no-op
	claim, err = f.engine.ClaimReferral(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, claim.Amount.IsZero())
	assert.True(t, f.balance(t, "alice").Equal(d("50.15")))
	assert.Equal(t, 1, f.events.count(event.ReferralClaimed))

	_, err = f.engine.ClaimReferral(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCooldownStartsFreshRound(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.5)
	ctx := context.Background()

	first := f.engine.Snapshot(ctx).RoundID
	f.bet(t, "alice", "10")
	f.bet(t, "bob", "10")
	f.clock.Advance(DefaultCountdownTicks * DefaultTickInterval)

	settled := f.engine.Snapshot(ctx)
	assert.Equal(t, first, settled.RoundID)
	assert.NotEmpty(t, settled.WinnerID)

	f.clock.Advance(DefaultCooldown - time.Millisecond)
	assert.Equal(t, domain.PhaseSettling, f.engine.Snapshot(ctx).Phase)

	f.clock.Advance(time.Millisecond)
	fresh := f.engine.Snapshot(ctx)
	assert.Equal(t, domain.PhaseIdle, fresh.Phase)
	assert.NotEqual(t, first, fresh.RoundID)
	assert.Empty(t, fresh.Contributions)
	assert.True(t, fresh.TotalPool.IsZero())
	assert.Empty(t, fresh.WinnerID)
	assert.Equal(t, 0, f.clock.Pending())

	f.bet(t, "carol", "5")
	assert.Equal(t, domain.PhaseIdle, f.engine.Snapshot(ctx).Phase)
}

func TestResetDuringAcceptingRefunds(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.5)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "25")
	f.clock.Advance(3 * time.Second)
	old := f.engine.Snapshot(ctx).RoundID

	reset, err := f.engine.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, old, reset.RoundID)
	assert.False(t, reset.WasSettled)
	assert.True(t, reset.Refunds["alice"].Equal(d("10")))
	assert.True(t, reset.Refunds["bob"].Equal(d("25")))
	assert.True(t, f.balance(t, "alice").Equal(d("50")))
	assert.True(t, f.balance(t, "bob").Equal(d("50")))

	snap := f.engine.Snapshot(ctx)
	assert.Equal(t, reset.NextRound, snap.RoundID)
	assert.Equal(t, domain.PhaseIdle, snap.Phase)

	// a single bet in the new round must not be swept up by the old countdown
	f.bet(t, "carol", "5")
	ticks := f.events.count(event.RoundTick)
	f.clock.Advance(time.Minute)
	assert.Equal(t, ticks, f.events.count(event.RoundTick))
	assert.Equal(t, 0, f.events.count(event.RoundSettled))
	assert.Equal(t, domain.PhaseIdle, f.engine.Snapshot(ctx).Phase)
	assert.Equal(t, 1, f.events.count(event.RoundReset))
}

func TestResetAfterSettlementDoesNotRefund(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.1)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "10")
	_, err := f.engine.Settle(ctx)
	require.NoError(t, err)
	aliceAfter := f.balance(t, "alice")

	reset, err := f.engine.Reset(ctx)
	require.NoError(t, err)
	assert.True(t, reset.WasSettled)
	assert.Empty(t, reset.Refunds)
	assert.True(t, f.balance(t, "alice").Equal(aliceAfter))

	// the old cooldown is gone
	f.clock.Advance(DefaultCooldown * 2)
	assert.Equal(t, reset.NextRound, f.engine.Snapshot(ctx).RoundID)
}

func TestClientDrawMode(t *testing.T) {
	f := newFixture(t, domain.DrawModeClient)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "30")
	f.clock.Advance(DefaultCountdownTicks * DefaultTickInterval)
	require.Equal(t, domain.PhaseLocked, f.engine.Snapshot(ctx).Phase)
	assert.Equal(t, 0, f.events.count(event.RoundSettled))

	_, err := f.engine.SettleAt(ctx, 1.0)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
	_, err = f.engine.SettleAt(ctx, -0.1)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)

	result, err := f.engine.SettleAt(ctx, 0.25)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.WinnerID)
	assert.Equal(t, domain.DrawModeClient, result.Mode)

	_, err = f.engine.SettleAt(ctx, 0.5)
	assert.ErrorIs(t, err, domain.ErrDoubleSettlement)
}

func TestSettleAtRejectedInServerMode(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.5)
	f.bet(t, "alice", "10")

	_, err := f.engine.SettleAt(context.Background(), 0.5)
	assert.ErrorIs(t, err, domain.ErrDrawModeMismatch)
	assert.True(t, f.balance(t, "alice").Equal(d("40")))
}

func TestShutdown(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.5)
	ctx := context.Background()

	f.bet(t, "alice", "10")
	f.bet(t, "bob", "10")
	require.NoError(t, f.engine.CheckHealth(ctx))
	require.NoError(t, f.engine.Shutdown(ctx))
	assert.ErrorIs(t, f.engine.CheckHealth(ctx), domain.ErrEngineStopped)
	assert.Equal(t, 0, f.clock.Pending())

	f.clock.Advance(time.Minute)
	assert.Equal(t, 0, f.events.count(event.RoundTick))

	_, err := f.engine.PlaceBet(ctx, "carol", domain.FixedBet(d("1")))
	assert.ErrorIs(t, err, domain.ErrEngineStopped)
	_, err = f.engine.Settle(ctx)
	assert.ErrorIs(t, err, domain.ErrEngineStopped)
	_, err = f.engine.Reset(ctx)
	assert.ErrorIs(t, err, domain.ErrEngineStopped)
	_, err = f.engine.ClaimReferral(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrEngineStopped)
	assert.ErrorIs(t, f.engine.Shutdown(ctx), domain.ErrEngineStopped)
}

func TestConcurrentBets(t *testing.T) {
	f := newFixture(t, domain.DrawModeServer, 0.5)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"alice", "bob", "carol"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, _ = f.engine.PlaceBet(ctx, id, domain.FixedBet(d("1")))
			}
		}(id)
	}
	wg.Wait()

	snap := f.engine.Snapshot(ctx)
	assert.True(t, snap.TotalPool.Equal(d("30")))
	sum := decimal.Zero
	for _, c := range snap.Contributions {
		sum = sum.Add(c.Amount)
	}
	assert.True(t, sum.Equal(snap.TotalPool))
	assert.Equal(t, domain.PhaseAccepting, snap.Phase)
}
