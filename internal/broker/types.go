package broker

import (
	"context"

	"media-broker/internal/cachekey"
	"media-broker/internal/database"
)

// Producer performs the expensive work for one cache key: remote media
// extraction, transcoding, or both. It runs at most once per key at a
// time and its context is detached from any single caller, since many
// callers may be joined to the same execution.
type Producer func(ctx context.Context) (*Result, error)

// Result is what a producer yields on success.
type Result struct {
	ContentHash string                `json:"contentHash"`
	Kind        database.ArtifactKind `json:"kind"`
	Extension   string                `json:"extension,omitempty"`
	Location    string                `json:"location"`
}

// Source says how a resolution was satisfied.
type Source int

const (
	// SourceCache means the persistent cache already held the artifact
	// and no producer ran.
	SourceCache Source = iota
	// SourceProducer means a producer executed (or this caller joined
	// one already executing) and yielded a fresh result.
	SourceProducer
)

// String returns the string representation of a resolution source.
func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceProducer:
		return "producer"
	default:
		return "unknown"
	}
}

// Resolution is the tagged outcome of Resolve. Exactly one of Cached or
// Result is set, matching Source.
type Resolution struct {
	Source Source
	Key    string
	Cached *database.CachedConversion
	Result *Result
}

// ResolveOptions adjusts how a single resolution behaves.
type ResolveOptions struct {
	// Convert contributes to the cache key; nil means a plain download.
	Convert *cachekey.ConvertOptions
	// SkipCache forces a producer run even if the key is cached.
	SkipCache bool
	// ExpectedKind, when set, invalidates cache hits whose artifact kind
	// differs, forcing a fresh conversion.
	ExpectedKind database.ArtifactKind
	// Requester is recorded with the cached result for attribution.
	Requester string
}

// CacheStore is the slice of the persistent layer the broker needs.
type CacheStore interface {
	Lookup(ctx context.Context, key string) (*database.CachedConversion, error)
	Upsert(ctx context.Context, rec *database.CachedConversion) error
}

// Stats is a point-in-time snapshot of broker state, exposed for
// observability only.
type Stats struct {
	Active       int `json:"active"`
	Queued       int `json:"queued"`
	InFlightKeys int `json:"inFlightKeys"`
	Ceiling      int `json:"ceiling"`
}
