package broker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-broker/internal/cachekey"
	"media-broker/internal/database"
	"media-broker/internal/logging"
	"media-broker/internal/metrics"
)

// DefaultCeiling is the default number of concurrently executing
// producers. It is deliberately low: the extraction service downstream
// is rate limited and the transcoding container is CPU bound.
const DefaultCeiling = 2

// flight is the single shared settlement for one in-flight cache key.
// All callers joined to the key wait on done and then read result/err.
type flight struct {
	done   chan struct{}
	result *Result
	err    error
}

// request is one queued unit of work, ordered FIFO.
type request struct {
	key        string
	fl         *flight
	producer   Producer
	ctx        context.Context
	requester  string
	enqueuedAt time.Time
}

// Broker owns the in-flight map, the FIFO queue and the active count.
// All three are mutated only under mu, inside the broker's own
// admission and settlement paths.
type Broker struct {
	cache   CacheStore
	ceiling int

	mu       sync.Mutex
	inFlight map[string]*flight
	queue    []*request
	active   int
}

// New creates a Broker backed by cache with the given admission
// ceiling. A ceiling below 1 falls back to DefaultCeiling.
func New(cache CacheStore, ceiling int) *Broker {
	if ceiling < 1 {
		ceiling = DefaultCeiling
	}
	return &Broker{
		cache:    cache,
		ceiling:  ceiling,
		inFlight: make(map[string]*flight),
	}
}

// Resolve obtains the conversion result for url, running producer only
// if the persistent cache cannot satisfy the request and no identical
// request is already in flight.
//
// The caller's context governs only this caller's wait: cancelling it
// abandons the wait but never the work, whose outcome is still cached
// for the next request.
func (b *Broker) Resolve(ctx context.Context, url string, producer Producer, opts ResolveOptions) (*Resolution, error) {
	key := cachekey.ForConversion(url, opts.Convert)
	reqID := uuid.NewString()

	logging.Debug("[%s] resolve: url=%s key=%s skipCache=%v expectedKind=%q",
		reqID, url, key, opts.SkipCache, opts.ExpectedKind)

	if !opts.SkipCache {
		if res := b.checkCache(ctx, key, opts.ExpectedKind, reqID); res != nil {
			return res, nil
		}
	}

	fl, owned := b.join(key)
	if owned {
		b.enqueue(ctx, key, fl, producer, opts.Requester)
	} else {
		metrics.ResolutionsTotal.WithLabelValues("joined").Inc()
		logging.Debug("[%s] joined in-flight request for key=%s", reqID, key)
	}

	select {
	case <-fl.done:
	case <-ctx.Done():
		// The work continues without this caller; see doc comment.
		logging.Debug("[%s] caller abandoned wait for key=%s: %v", reqID, key, ctx.Err())
		return nil, ctx.Err()
	}

	if fl.err != nil {
		if owned {
			metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		}
		return nil, fl.err
	}

	if owned {
		metrics.ResolutionsTotal.WithLabelValues("produced").Inc()
	}
	return &Resolution{Source: SourceProducer, Key: key, Result: fl.result}, nil
}

// checkCache returns a cache-hit resolution, or nil when the producer
// must run. Lookup failures and kind mismatches both degrade to a miss.
func (b *Broker) checkCache(ctx context.Context, key string, expected database.ArtifactKind, reqID string) *Resolution {
	rec, err := b.cache.Lookup(ctx, key)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		logging.Warn("[%s] cache lookup failed for key=%s, treating as miss: %v", reqID, key, err)
		return nil
	}
	if rec == nil {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}

	if expected != "" && rec.Kind != expected {
		metrics.CacheLookupsTotal.WithLabelValues("kind_mismatch").Inc()
		logging.Debug("[%s] cached kind %q does not match expected %q for key=%s, bypassing cache",
			reqID, rec.Kind, expected, key)
		return nil
	}

	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	metrics.ResolutionsTotal.WithLabelValues("cache_hit").Inc()
	logging.Debug("[%s] cache hit for key=%s: %s", reqID, key, rec.Location)
	return &Resolution{Source: SourceCache, Key: key, Cached: rec}
}

// join returns the flight for key. The second return is true when this
// caller created (and therefore owns) the flight; the check and the
// publication happen under one lock so two near-simultaneous first-time
// callers always converge on a single flight.
func (b *Broker) join(key string) (*flight, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if fl, ok := b.inFlight[key]; ok {
		return fl, false
	}

	fl := &flight{done: make(chan struct{})}
	b.inFlight[key] = fl
	return fl, true
}

// enqueue appends the request and immediately attempts admission.
func (b *Broker) enqueue(ctx context.Context, key string, fl *flight, producer Producer, requester string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue = append(b.queue, &request{
		key:        key,
		fl:         fl,
		producer:   producer,
		ctx:        context.WithoutCancel(ctx),
		requester:  requester,
		enqueuedAt: time.Now(),
	})
	b.admitLocked()
}

// admitLocked starts queued producers while capacity remains.
// Callers must hold mu.
func (b *Broker) admitLocked() {
	for b.active < b.ceiling && len(b.queue) > 0 {
		req := b.queue[0]
		b.queue = b.queue[1:]
		b.active++

		metrics.QueueWaitDuration.Observe(time.Since(req.enqueuedAt).Seconds())
		go b.run(req)
	}
}

// run executes one producer and settles its flight. Settlement removes
// the in-flight entry before waking waiters, so a retry after failure
// always starts a fresh flight.
func (b *Broker) run(req *request) {
	result, err := req.producer(req.ctx)

	if err == nil && result != nil {
		b.store(req, result)
	}

	b.mu.Lock()
	delete(b.inFlight, req.key)
	b.active--
	req.fl.result = result
	req.fl.err = err
	close(req.fl.done)
	b.admitLocked()
	b.mu.Unlock()

	if err != nil {
		logging.Error("producer failed for key=%s: %v", req.key, err)
	}
}

// store persists a fresh producer result. A storage failure is logged
// but does not fail the resolution: the artifact exists and every
// waiter can still use it; only reuse by later requests is lost.
func (b *Broker) store(req *request, result *Result) {
	rec := &database.CachedConversion{
		Key:         req.key,
		ContentHash: result.ContentHash,
		Kind:        result.Kind,
		Extension:   result.Extension,
		Location:    result.Location,
		CreatedAt:   time.Now(),
		Requester:   req.requester,
	}
	if err := b.cache.Upsert(req.ctx, rec); err != nil {
		logging.Error("failed to cache result for key=%s: %v", req.key, err)
	}
}

// Stats returns a snapshot of the broker's admission state.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Active:       b.active,
		Queued:       len(b.queue),
		InFlightKeys: len(b.inFlight),
		Ceiling:      b.ceiling,
	}
}
