package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(documentSavesTotal) }

var documentSavesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "document_saves_total",
		Help: "Persisted document writes by document and result (ok/error).",
	},
	[]string{"document", "result"},
)

func IncDocumentSave(document, result string) {
	documentSavesTotal.WithLabelValues(norm(document), norm(result)).Inc()
}
