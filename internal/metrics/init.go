package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"cache_hit", "produced", "joined", "error"} {
		ResolutionsTotal.WithLabelValues(outcome)
	}

	for _, result := range []string{"hit", "miss", "kind_mismatch", "error"} {
		CacheLookupsTotal.WithLabelValues(result)
	}

	for _, status := range []string{"success", "validation_error", "timeout", "tool_missing", "failed"} {
		TranscodesTotal.WithLabelValues(status)
	}

	for _, op := range []string{"initialize_schema", "lookup", "upsert", "count", "clear"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
