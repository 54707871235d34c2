package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/JackpotArena_Go/internal/config"
	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/draw"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/history"
	"github.com/osse101/JackpotArena_Go/internal/ledger"
	"github.com/osse101/JackpotArena_Go/internal/metrics"
	"github.com/osse101/JackpotArena_Go/internal/middleware"
	"github.com/osse101/JackpotArena_Go/internal/round"
	"github.com/osse101/JackpotArena_Go/internal/scheduler"
	"github.com/osse101/JackpotArena_Go/internal/sse"
	"github.com/osse101/JackpotArena_Go/internal/utils"
)

// Arena holds the assembled game components
type Arena struct {
	Ledger   *ledger.Ledger
	Bus      event.Bus
	Timer    *scheduler.Timer
	Engine   *round.Engine
	History  *history.Store
	Hub      *sse.Hub
	Throttle *middleware.Throttle
}

// ArenaOptions lets tests swap the clock and the random source
type ArenaOptions struct {
	Scheduler scheduler.Scheduler
	Source    draw.Source
}

// BuildArena wires ledger, bus subscribers, scheduler and engine from cfg.
// The SSE hub is started; GracefulShutdown stops it.
func BuildArena(cfg *config.Config, opts ArenaOptions) (*Arena, error) {
	roundCfg, err := RoundConfig(cfg)
	if err != nil {
		return nil, err
	}

	throttle := middleware.NewThrottle(cfg.BetRatePerSecond, cfg.BetBurst, middleware.DefaultThrottleSize, middleware.DefaultThrottleIdle)
	a := &Arena{
		Ledger:   ledger.New(LedgerConfig(cfg)),
		Bus:      event.NewMemoryBus(),
		History:  history.New(cfg.HistorySize, cfg.HistoryTTL),
		Hub:      sse.NewHub(),
		Throttle: throttle,
	}

	// Subscribers go in before the engine can publish anything
	if err := RegisterEventHandlers(a.Bus, a.History, a.Hub); err != nil {
		return nil, err
	}

	sched := opts.Scheduler
	if sched == nil {
		a.Timer = scheduler.New()
		sched = a.Timer
	}
	source := opts.Source
	if source == nil {
		source = utils.SecureRandomFloat
	}

	a.Engine = round.NewEngine(roundCfg, a.Ledger, sched, a.Bus, source)
	a.Hub.Start()

	slog.Info(LogMsgArenaAssembled,
		"draw_mode", roundCfg.DrawMode,
		"countdown_ticks", roundCfg.CountdownTicks,
		"min_participants", roundCfg.MinParticipants)
	return a, nil
}

// RegisterEventHandlers attaches metrics, settlement history and the SSE
// bridge to the bus
func RegisterEventHandlers(bus event.Bus, store *history.Store, hub *sse.Hub) error {
	collector := metrics.NewEventMetricsCollector()
	if err := collector.Register(bus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	store.Register(bus)
	slog.Info(LogMsgHistoryRegistered)

	sse.NewSubscriber(hub, bus).Subscribe()
	slog.Info(LogMsgSSESubscriberRegistered)
	return nil
}

// RoundConfig maps application configuration onto the engine settings
func RoundConfig(cfg *config.Config) (round.Config, error) {
	mode := domain.DrawMode(cfg.DrawMode)
	if mode != domain.DrawModeServer && mode != domain.DrawModeClient {
		return round.Config{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, ErrMsgInvalidDrawMode, cfg.DrawMode)
	}
	return round.Config{
		CountdownTicks:  cfg.CountdownTicks,
		TickInterval:    cfg.TickInterval,
		Cooldown:        cfg.Cooldown,
		MinParticipants: cfg.MinParticipants,
		CommissionRate:  cfg.CommissionRate,
		DrawMode:        mode,
	}, nil
}

// LedgerConfig maps application configuration onto the ledger settings
func LedgerConfig(cfg *config.Config) ledger.Config {
	return ledger.Config{
		StartingBalance: cfg.StartingBalance,
		ReferralEnabled: cfg.ReferralEnabled,
		ReferralRate:    cfg.ReferralRate,
		ReferralShare:   cfg.ReferralShare,
	}
}
