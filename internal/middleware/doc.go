// Package middleware provides HTTP middleware for the broker's ops
// surface.
//
// It includes:
//   - Request logging with log-injection-safe field sanitization
//   - Prometheus instrumentation (request counts, durations, in-flight)
//   - Configurable filtering for health-check noise
package middleware
