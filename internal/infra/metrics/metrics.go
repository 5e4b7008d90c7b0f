// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		redemptionsTotal,
		codesCreatedTotal,
		codesGauge,
		broadcastDeliveriesTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_redemptions_total",
			Help: "Redemption attempts by result (success/banned/invalid/already_redeemed/error).",
		},
		[]string{"result"},
	)

	codesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_codes_created_total",
			Help: "Codes created, by source (manual/generated).",
		},
		[]string{"source"},
	)

	codesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "giveaway_codes",
			Help: "Current number of codes by state (total/redeemed/available).",
		},
		[]string{"state"},
	)

	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_broadcast_deliveries_total",
			Help: "Broadcast messages by delivery result (sent/failed).",
		},
		[]string{"result"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func AddCodesCreated(source string, n int) {
	codesCreatedTotal.WithLabelValues(norm(source)).Add(float64(n))
}

func SetCodes(total, redeemed int) {
	codesGauge.WithLabelValues("total").Set(float64(total))
	codesGauge.WithLabelValues("redeemed").Set(float64(redeemed))
	codesGauge.WithLabelValues("available").Set(float64(total - redeemed))
}

func IncBroadcastDelivery(result string) {
	broadcastDeliveriesTotal.WithLabelValues(norm(result)).Inc()
}
