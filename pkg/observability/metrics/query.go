package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QuerySnapshot is an aggregate view of recorded query activity for one
// collection. It backs the optimizer's per-provider performance reporting.
type QuerySnapshot struct {
	Collection     string
	QueryCount     int64
	AvgDuration    time.Duration
	CacheHits      int64
	CacheMisses    int64
	SlowQueries    []SlowQueryRecord
	FieldFrequency map[string]int
}

// SlowQueryRecord captures a single query that exceeded the slow threshold.
type SlowQueryRecord struct {
	Collection string
	Fields     []string
	Duration   time.Duration
	At         time.Time
}

// CacheHitRate returns hits / (hits + misses), or 0 when nothing was recorded.
func (s QuerySnapshot) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

type collectionStats struct {
	queryCount     int64
	totalDuration  time.Duration
	cacheHits      int64
	cacheMisses    int64
	slowQueries    []SlowQueryRecord
	fieldFrequency map[string]int
}

// QueryRecorder accumulates per-collection query statistics and mirrors them
// into Prometheus collectors. Providers report into it; the optimizer reads
// snapshots out of it.
type QueryRecorder struct {
	mu            sync.Mutex
	slowThreshold time.Duration
	maxSlow       int
	stats         map[string]*collectionStats

	queryDuration *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
	slowTotal     *prometheus.CounterVec
}

// QueryRecorderOptions configures a QueryRecorder.
type QueryRecorderOptions struct {
	// SlowThreshold marks queries slower than this as slow. Defaults to 1s.
	SlowThreshold time.Duration
	// MaxSlowQueries bounds the retained slow query records per collection.
	MaxSlowQueries int
}

// Cosa fa: crea il recorder e registra i collector Prometheus.
// Cosa NON fa: non espone l'endpoint /metrics (vedi Registry.Handler).
// Esempio minimo: rec := metrics.NewQueryRecorder(reg, metrics.QueryRecorderOptions{})
func NewQueryRecorder(reg *Registry, opts QueryRecorderOptions) *QueryRecorder {
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = time.Second
	}
	if opts.MaxSlowQueries <= 0 {
		opts.MaxSlowQueries = 100
	}

	r := &QueryRecorder{
		slowThreshold: opts.SlowThreshold,
		maxSlow:       opts.MaxSlowQueries,
		stats:         make(map[string]*collectionStats),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storage_query_duration_seconds",
			Help:    "Duration of storage queries by collection.",
			Buckets: prometheus.DefBuckets,
		}, []string{"collection"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storage_cache_events_total",
			Help: "Cache hits and misses by collection.",
		}, []string{"collection", "result"}),
		slowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storage_slow_queries_total",
			Help: "Queries slower than the configured threshold.",
		}, []string{"collection"}),
	}

	if reg != nil {
		reg.MustRegister(r.queryDuration, r.cacheEvents, r.slowTotal)
	}
	return r
}

// ObserveQuery records one executed query against a collection. fields are
// the condition fields the query filtered on.
func (r *QueryRecorder) ObserveQuery(collection string, fields []string, d time.Duration) {
	r.queryDuration.WithLabelValues(collection).Observe(d.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.statsFor(collection)
	st.queryCount++
	st.totalDuration += d
	for _, f := range fields {
		st.fieldFrequency[f]++
	}
	if d >= r.slowThreshold {
		r.slowTotal.WithLabelValues(collection).Inc()
		if len(st.slowQueries) < r.maxSlow {
			st.slowQueries = append(st.slowQueries, SlowQueryRecord{
				Collection: collection,
				Fields:     append([]string(nil), fields...),
				Duration:   d,
				At:         time.Now(),
			})
		}
	}
}

// CacheHit records a cache hit for the collection.
func (r *QueryRecorder) CacheHit(collection string) {
	r.cacheEvents.WithLabelValues(collection, "hit").Inc()
	r.mu.Lock()
	r.statsFor(collection).cacheHits++
	r.mu.Unlock()
}

// CacheMiss records a cache miss for the collection.
func (r *QueryRecorder) CacheMiss(collection string) {
	r.cacheEvents.WithLabelValues(collection, "miss").Inc()
	r.mu.Lock()
	r.statsFor(collection).cacheMisses++
	r.mu.Unlock()
}

// Snapshot returns the accumulated statistics for a collection.
func (r *QueryRecorder) Snapshot(collection string) QuerySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stats[collection]
	if !ok {
		return QuerySnapshot{Collection: collection, FieldFrequency: map[string]int{}}
	}

	snap := QuerySnapshot{
		Collection:     collection,
		QueryCount:     st.queryCount,
		CacheHits:      st.cacheHits,
		CacheMisses:    st.cacheMisses,
		SlowQueries:    append([]SlowQueryRecord(nil), st.slowQueries...),
		FieldFrequency: make(map[string]int, len(st.fieldFrequency)),
	}
	if st.queryCount > 0 {
		snap.AvgDuration = st.totalDuration / time.Duration(st.queryCount)
	}
	for f, n := range st.fieldFrequency {
		snap.FieldFrequency[f] = n
	}
	return snap
}

// Reset clears accumulated statistics for a collection.
func (r *QueryRecorder) Reset(collection string) {
	r.mu.Lock()
	delete(r.stats, collection)
	r.mu.Unlock()
}

func (r *QueryRecorder) statsFor(collection string) *collectionStats {
	st, ok := r.stats[collection]
	if !ok {
		st = &collectionStats{fieldFrequency: make(map[string]int)}
		r.stats[collection] = st
	}
	return st
}
