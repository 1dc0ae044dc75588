package metrics

import (
	"time"

	"media-broker/internal/logging"
)

// StatsProvider supplies the point-in-time numbers the collector exports.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current broker and cache statistics.
type Stats struct {
	ActiveProducers   int
	QueuedRequests    int
	InFlightKeys      int
	AdmissionCeiling  int
	CachedConversions int64
}

// Collector periodically collects and updates gauge metrics.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	stats := c.statsProvider.GetStats()

	BrokerActiveProducers.Set(float64(stats.ActiveProducers))
	BrokerQueuedRequests.Set(float64(stats.QueuedRequests))
	BrokerInFlightKeys.Set(float64(stats.InFlightKeys))
	BrokerAdmissionCeiling.Set(float64(stats.AdmissionCeiling))
	CachedConversions.Set(float64(stats.CachedConversions))

	logging.Debug("Metrics collected: active=%d queued=%d inflight=%d cached=%d",
		stats.ActiveProducers, stats.QueuedRequests, stats.InFlightKeys, stats.CachedConversions)
}
