package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Round metric names
const (
	MetricNameBetsPlaced         = "arena_bets_placed_total"
	MetricNameBetsRejected       = "arena_bets_rejected_total"
	MetricNameBetVolume          = "arena_bet_volume_total"
	MetricNameRoundsSettled      = "arena_rounds_settled_total"
	MetricNameRoundResets        = "arena_round_resets_total"
	MetricNamePayoutTotal        = "arena_payout_total"
	MetricNameCommissionTotal    = "arena_commission_total"
	MetricNameReferralAccrued    = "arena_referral_accrued_total"
	MetricNameReferralClaimed    = "arena_referral_claimed_total"
	MetricNameRevenueTotal       = "arena_revenue_total"
	MetricNamePoolSize           = "arena_pool_size"
	MetricNameParticipants       = "arena_participants"
	MetricNameCountdownRemaining = "arena_countdown_remaining"
	MetricNameSSEClients         = "arena_sse_clients"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Round metric help text
const (
	HelpTextBetsPlaced         = "Total number of accepted bets"
	HelpTextBetsRejected       = "Total number of rejected bets"
	HelpTextBetVolume          = "Total amount staked across all rounds"
	HelpTextRoundsSettled      = "Total number of settled rounds"
	HelpTextRoundResets        = "Total number of administrative round resets"
	HelpTextPayoutTotal        = "Total amount paid to round winners"
	HelpTextCommissionTotal    = "Total commission withheld from pools"
	HelpTextReferralAccrued    = "Total referral commission accrued to referrers"
	HelpTextReferralClaimed    = "Total referral commission claimed into balances"
	HelpTextRevenueTotal       = "Total commission retained after referral accrual"
	HelpTextPoolSize           = "Total pool of the current round"
	HelpTextParticipants       = "Distinct participants in the current round"
	HelpTextCountdownRemaining = "Countdown ticks left in the current round"
	HelpTextSSEClients         = "Currently connected event stream clients"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelMode   = "mode"
)

// UnmatchedRoutePath labels requests that matched no route
const UnmatchedRoutePath = "unmatched"

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadDecode = "Event payload could not be decoded"
	LogMsgMetricsRecorded    = "Metrics recorded for event"
)
