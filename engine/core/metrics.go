package core

import "sync"

/**
 * @brief Counters describing the behaviour of the mesh resource pipeline
 * since process start. Values only ever increase; there is no reset other
 * than process exit.
 */
type MetricsState struct {
	mu sync.Mutex

	CacheHits      uint64
	CacheMisses    uint64
	ImportAttempts uint64
	ImportFailures uint64

	AccumulatedImportMS float64
	ImportsCompleted    uint64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

func MetricsCacheHit() {
	metricsState.mu.Lock()
	metricsState.CacheHits++
	metricsState.mu.Unlock()
}

func MetricsCacheMiss() {
	metricsState.mu.Lock()
	metricsState.CacheMisses++
	metricsState.mu.Unlock()
}

// MetricsImportAttempt records one call into the external importer for a
// single search-path candidate, successful or not.
func MetricsImportAttempt() {
	metricsState.mu.Lock()
	metricsState.ImportAttempts++
	metricsState.mu.Unlock()
}

func MetricsImportFailure() {
	metricsState.mu.Lock()
	metricsState.ImportFailures++
	metricsState.mu.Unlock()
}

// MetricsImportCompleted records the wall time of a finished import.
func MetricsImportCompleted(elapsedMS float64) {
	metricsState.mu.Lock()
	metricsState.AccumulatedImportMS += elapsedMS
	metricsState.ImportsCompleted++
	metricsState.mu.Unlock()
}

// MetricsImportAvgMS returns the average import wall time in milliseconds,
// or 0 when nothing has been imported yet.
func MetricsImportAvgMS() float64 {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	if metricsState.ImportsCompleted == 0 {
		return 0
	}
	return metricsState.AccumulatedImportMS / float64(metricsState.ImportsCompleted)
}

func MetricsSnapshot() (hits, misses, attempts, failures uint64) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	return metricsState.CacheHits, metricsState.CacheMisses, metricsState.ImportAttempts, metricsState.ImportFailures
}
