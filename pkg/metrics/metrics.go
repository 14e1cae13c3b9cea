// Package metrics provides the centralized Prometheus registry for the
// Searchbase client. All metrics are defined in their respective packages
// (client, pagination) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics
// and the HTTP handler that exposes them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the Searchbase client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the Prometheus exposition handler for all client metrics.
// Mount it wherever the embedding application serves metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - searchbase_requests_total{status} (Counter): Total search requests by HTTP status
//   - searchbase_request_duration_seconds (Histogram): Search request duration
//   - searchbase_errors_total{class} (Counter): Failures by class (client, server, network)
//
// Scroll Metrics (pkg/pagination):
//   - searchbase_scroll_pages_total (Counter): Pages fetched across all traversals
//   - searchbase_scroll_records_total (Counter): Records emitted across all traversals
//   - searchbase_scroll_traversals_total{outcome} (Counter): Finished traversals
//     by outcome (completed, failed)
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(searchbase_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(searchbase_request_duration_seconds_bucket[5m]))
//
//   # Average Records per Page
//   rate(searchbase_scroll_records_total[5m]) / rate(searchbase_scroll_pages_total[5m])
//
//   # Traversal Failure Ratio
//   sum(rate(searchbase_scroll_traversals_total{outcome="failed"}[5m])) /
//   sum(rate(searchbase_scroll_traversals_total[5m]))
