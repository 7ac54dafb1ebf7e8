package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion and geocoding Prometheus metrics.
var (
	IngestDocumentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "ingest_documents_total",
			Help:      "Total number of transaction documents ingested",
		},
	)

	IngestBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "ingest_batches_total",
			Help:      "Total number of ingestion batches",
		},
		[]string{"status"}, // "ok" / "error"
	)

	GeocodeLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "geocode_lookups_total",
			Help:      "Postcode geocoding lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestDocumentsTotal)
	prometheus.MustRegister(IngestBatchesTotal)
	prometheus.MustRegister(GeocodeLookupsTotal)
	ingestMetricsRegistered = true
}
