// Package metrics defines the Prometheus metrics exported by the broker.
//
// Metrics cover:
//   - Broker admission state (active producers, queue depth, in-flight keys)
//   - Resolution outcomes (cache hits, producer runs, joins, failures)
//   - Persistent cache queries and row counts
//   - Sandboxed transcode runs and durations
//   - The ops HTTP surface
//
// All metrics are registered via promauto at package init and exposed on
// the metrics listener configured at startup.
package metrics
