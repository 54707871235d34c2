package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Round Metrics
var (
	BetsPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBetsPlaced,
			Help: HelpTextBetsPlaced,
		},
	)

	BetsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBetsRejected,
			Help: HelpTextBetsRejected,
		},
	)

	BetVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBetVolume,
			Help: HelpTextBetVolume,
		},
	)

	RoundsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRoundsSettled,
			Help: HelpTextRoundsSettled,
		},
		[]string{LabelMode},
	)

	RoundResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoundResets,
			Help: HelpTextRoundResets,
		},
	)

	PayoutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePayoutTotal,
			Help: HelpTextPayoutTotal,
		},
	)

	CommissionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCommissionTotal,
			Help: HelpTextCommissionTotal,
		},
	)

	ReferralAccrued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameReferralAccrued,
			Help: HelpTextReferralAccrued,
		},
	)

	ReferralClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameReferralClaimed,
			Help: HelpTextReferralClaimed,
		},
	)

	RevenueTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRevenueTotal,
			Help: HelpTextRevenueTotal,
		},
	)

	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNamePoolSize,
			Help: HelpTextPoolSize,
		},
	)

	Participants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameParticipants,
			Help: HelpTextParticipants,
		},
	)

	CountdownRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameCountdownRemaining,
			Help: HelpTextCountdownRemaining,
		},
	)

	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameSSEClients,
			Help: HelpTextSSEClients,
		},
	)
)
