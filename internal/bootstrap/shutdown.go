package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/JackpotArena_Go/internal/scheduler"
	"github.com/osse101/JackpotArena_Go/internal/server"
	"github.com/osse101/JackpotArena_Go/internal/sse"
)

// ShutdownComponents holds all components that need graceful shutdown.
// Any field may be nil.
type ShutdownComponents struct {
	Server *server.Server
	Engine Shutdowner
	Timer  *scheduler.Timer
	Hub    *sse.Hub
}

// GracefulShutdown stops components in order:
// 1. HTTP server (stop accepting new bets)
// 2. Round engine (cancel countdown and cooldown)
// 3. Scheduler (wait for callbacks already running)
// 4. SSE hub (close client streams)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Engine != nil {
		shutdownService(ctx, ServiceNameRound, components.Engine)
	}

	if components.Timer != nil {
		if err := components.Timer.Shutdown(ctx); err != nil {
			slog.Error(LogMsgSchedulerFailed, "error", err)
		}
	}

	if components.Hub != nil {
		components.Hub.Stop()
	}

	slog.Info(LogMsgServerStopped)
}

// Shutdowner is a service that can be stopped with a deadline
type Shutdowner interface {
	Shutdown(context.Context) error
}

// shutdownService shuts down a service and logs any error
func shutdownService(ctx context.Context, name string, service Shutdowner) {
	if err := service.Shutdown(ctx); err != nil {
		slog.Error(name+LogMsgServiceShutdownFailed, "error", err)
	}
}
