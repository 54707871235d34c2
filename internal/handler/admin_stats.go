package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"

	"github.com/osse101/JackpotArena_Go/internal/metrics"
)

// AdminStatsResponse is the JSON view of arena metrics for the admin dashboard
type AdminStatsResponse struct {
	HTTP   HTTPStats   `json:"http"`
	Arena  ArenaStats  `json:"arena"`
	Ledger LedgerStats `json:"ledger"`
	SSE    SSEStats    `json:"sse"`
}

type HTTPStats struct {
	RequestsTotalByStatus map[string]float64 `json:"requests_total_by_status"`
	AvgLatencyMs          float64            `json:"avg_latency_ms"`
	P95LatencyMs          float64            `json:"p95_latency_ms"`
}

type ArenaStats struct {
	BetsPlaced          float64            `json:"bets_placed"`
	BetsRejected        float64            `json:"bets_rejected"`
	BetVolume           float64            `json:"bet_volume"`
	RoundsSettledByMode map[string]float64 `json:"rounds_settled_by_mode"`
	Payout              float64            `json:"payout"`
	Commission          float64            `json:"commission"`
	ReferralAccrued     float64            `json:"referral_accrued"`
	PoolSize            float64            `json:"pool_size"`
	Participants        float64            `json:"participants"`
}

type LedgerStats struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Holdings decimal.Decimal `json:"holdings"`
}

type SSEStats struct {
	ClientCount int `json:"client_count"`
}

// Treasury exposes ledger-wide totals
type Treasury interface {
	Revenue() decimal.Decimal
	Holdings() decimal.Decimal
}

// ClientCounter reports connected stream clients
type ClientCounter interface {
	ClientCount() int
}

// AdminStatsHandler serves aggregated metrics
type AdminStatsHandler struct {
	gatherer prometheus.Gatherer
	treasury Treasury
	clients  ClientCounter
}

// NewAdminStatsHandler creates an admin stats handler. A nil gatherer reads the
// default registry.
func NewAdminStatsHandler(gatherer prometheus.Gatherer, treasury Treasury, clients ClientCounter) *AdminStatsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &AdminStatsHandler{gatherer: gatherer, treasury: treasury, clients: clients}
}

// HandleGetStats returns JSON-formatted metrics
// GET /api/v1/admin/stats
func (h *AdminStatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.gather()
	if err != nil {
		respondServiceError(w, r, "Gather metrics", err)
		return
	}

	if h.treasury != nil {
		stats.Ledger.Revenue = h.treasury.Revenue()
		stats.Ledger.Holdings = h.treasury.Holdings()
	}
	if h.clients != nil {
		stats.SSE.ClientCount = h.clients.ClientCount()
	}

	respondJSON(w, http.StatusOK, stats)
}

func (h *AdminStatsHandler) gather() (*AdminStatsResponse, error) {
	families, err := h.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	resp := &AdminStatsResponse{
		HTTP:  HTTPStats{RequestsTotalByStatus: make(map[string]float64)},
		Arena: ArenaStats{RoundsSettledByMode: make(map[string]float64)},
	}

	for _, mf := range families {
		switch mf.GetName() {
		case metrics.MetricNameHTTPRequestsTotal:
			for _, m := range mf.GetMetric() {
				if status := getLabelValue(m, metrics.LabelStatus); status != "" {
					resp.HTTP.RequestsTotalByStatus[status] += m.GetCounter().GetValue()
				}
			}
		case metrics.MetricNameHTTPRequestDuration:
			var count uint64
			var sum float64
			merged := map[float64]uint64{}
			var bounds []float64
			for _, m := range mf.GetMetric() {
				hist := m.GetHistogram()
				count += hist.GetSampleCount()
				sum += hist.GetSampleSum()
				for _, b := range hist.GetBucket() {
					if _, ok := merged[b.GetUpperBound()]; !ok {
						bounds = append(bounds, b.GetUpperBound())
					}
					merged[b.GetUpperBound()] += b.GetCumulativeCount()
				}
			}
			if count > 0 {
				resp.HTTP.AvgLatencyMs = sum / float64(count) * 1000
				resp.HTTP.P95LatencyMs = estimateQuantile(bounds, merged, count, 0.95) * 1000
			}
		case metrics.MetricNameRoundsSettled:
			for _, m := range mf.GetMetric() {
				resp.Arena.RoundsSettledByMode[getLabelValue(m, metrics.LabelMode)] += m.GetCounter().GetValue()
			}
		case metrics.MetricNameBetsPlaced:
			resp.Arena.BetsPlaced = sumValues(mf)
		case metrics.MetricNameBetsRejected:
			resp.Arena.BetsRejected = sumValues(mf)
		case metrics.MetricNameBetVolume:
			resp.Arena.BetVolume = sumValues(mf)
		case metrics.MetricNamePayoutTotal:
			resp.Arena.Payout = sumValues(mf)
		case metrics.MetricNameCommissionTotal:
			resp.Arena.Commission = sumValues(mf)
		case metrics.MetricNameReferralAccrued:
			resp.Arena.ReferralAccrued = sumValues(mf)
		case metrics.MetricNamePoolSize:
			resp.Arena.PoolSize = sumValues(mf)
		case metrics.MetricNameParticipants:
			resp.Arena.Participants = sumValues(mf)
		}
	}

	return resp, nil
}

// sumValues adds up every counter or gauge sample in the family
func sumValues(mf *dto.MetricFamily) float64 {
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.GetCounter() != nil:
			total += m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			total += m.GetGauge().GetValue()
		}
	}
	return total
}

func getLabelValue(m *dto.Metric, labelName string) string {
	for _, label := range m.GetLabel() {
		if label.GetName() == labelName {
			return label.GetValue()
		}
	}
	return ""
}

// estimateQuantile returns the upper bound of the first bucket whose
// cumulative count reaches the quantile. bounds must be ascending.
func estimateQuantile(bounds []float64, cumulative map[float64]uint64, total uint64, quantile float64) float64 {
	if total == 0 || len(bounds) == 0 {
		return 0
	}

	target := float64(total) * quantile
	for _, b := range bounds {
		if float64(cumulative[b]) >= target {
			return b
		}
	}
	return bounds[len(bounds)-1]
}
