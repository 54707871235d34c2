package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/handler"
	"github.com/osse101/JackpotArena_Go/internal/logger"
	"github.com/osse101/JackpotArena_Go/internal/metrics"
	"github.com/osse101/JackpotArena_Go/internal/round"
	"github.com/osse101/JackpotArena_Go/internal/sse"
)

// Options holds listener and security settings
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	ServiceName    string
	Version        string
}

// Services are the components the routes call into. History, Throttle,
// Treasury and Hub may be nil.
type Services struct {
	Round    round.Service
	Health   handler.HealthChecker
	Users    handler.UserStore
	History  handler.HistoryReader
	Throttle handler.BetThrottle
	Treasury handler.Treasury
	Hub      *sse.Hub
}

type Server struct {
	httpServer *http.Server
	router     chi.Router
}

// NewServer creates a new Server instance
func NewServer(opts Options, svc Services) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(loggingMiddleware)
	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBytes))
	r.Use(metrics.Middleware)

	// Unversioned operational routes
	r.Get(PathHealthz, handler.HandleHealthz())
	if svc.Health != nil {
		r.Get(PathReadyz, handler.HandleReadyz(svc.Health))
	}
	r.Get(PathVersion, handler.HandleVersion(opts.ServiceName, opts.Version))
	r.Handle(PathMetrics, promhttp.Handler())

	roundHandler := handler.NewRoundHandler(svc.Round, svc.History, svc.Throttle)
	userHandler := handler.NewUserHandler(svc.Users)

	r.Route(PathAPI, func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.HandleRegisterUser)
			r.Get("/{id}", userHandler.HandleGetUser)
		})

		r.Post("/bets", roundHandler.HandlePlaceBet)
		r.Post("/referrals/claim", roundHandler.HandleClaimReferral)

		r.Route("/round", func(r chi.Router) {
			r.Get("/", roundHandler.HandleGetRound)
			r.Post("/settle", roundHandler.HandleSettle)
			r.Post("/reset", roundHandler.HandleReset)
		})

		r.Route("/rounds", func(r chi.Router) {
			r.Get("/", roundHandler.HandleRecentRounds)
			r.Get("/{id}", roundHandler.HandleGetSettlement)
		})

		if svc.Hub != nil {
			r.Get("/events", sse.Handler(svc.Hub, func(ctx context.Context) (string, interface{}) {
				return string(event.RoundSnapshot), svc.Round.Snapshot(ctx)
			}))
		}

		var clients handler.ClientCounter
		if svc.Hub != nil {
			clients = svc.Hub
		}
		statsHandler := handler.NewAdminStatsHandler(nil, svc.Treasury, clients)
		r.Get("/admin/stats", statsHandler.HandleGetStats)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           r,
			ReadHeaderTimeout: ReadHeaderTimeout,
			IdleTimeout:       IdleTimeout,
		},
		router: r,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps event streams working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func isQuietPath(path string) bool {
	for _, p := range QuietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// Reuse an upstream request ID when one was forwarded
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	slog.Default().Info(LogMsgServerStopping)
	return s.httpServer.Shutdown(ctx)
}
