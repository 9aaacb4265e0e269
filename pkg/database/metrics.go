package database

import (
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/metrics"
)

// MetricsFromSnapshot converts a recorder snapshot into the contract's
// QueryMetrics shape. Providers that report through a QueryRecorder share
// this conversion.
func MetricsFromSnapshot(snap metrics.QuerySnapshot) QueryMetrics {
	slow := make([]SlowQuery, 0, len(snap.SlowQueries))
	for _, s := range snap.SlowQueries {
		slow = append(slow, SlowQuery{
			Collection: s.Collection,
			Fields:     s.Fields,
			Duration:   s.Duration,
			At:         s.At,
		})
	}
	fields := snap.FieldFrequency
	if fields == nil {
		fields = map[string]int{}
	}
	return QueryMetrics{
		Collection:     snap.Collection,
		QueryCount:     snap.QueryCount,
		AvgDuration:    snap.AvgDuration,
		CacheHitRate:   snap.CacheHitRate(),
		SlowQueries:    slow,
		FieldFrequency: fields,
	}
}
