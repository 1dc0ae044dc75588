// Package broker implements admission control for expensive media
// conversions.
//
// It provides:
//   - Deduplication of concurrent requests for the same cache key, so
//     the expensive producer runs at most once per key at a time
//   - A FIFO queue with a fixed ceiling on concurrently running
//     producers, protecting the rate-limited downstream services
//   - Persistent cache consultation before any work is admitted, with
//     kind-aware bypass when a cached artifact does not match what the
//     caller expects
//
// Callers supply the producer; the broker decides whether it runs, when
// it runs, and who shares its outcome.
package broker
