// Package workers decides how many conversion producers may run at
// once.
//
// Unlike CPU-derived worker pools, the conversion ceiling is driven by
// the rate limits of the downstream extraction service, so the default
// is a deliberately small constant with a hard upper cap on overrides.
package workers
