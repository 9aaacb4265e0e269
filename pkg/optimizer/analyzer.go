// Package optimizer turns collected query metrics into actionable tuning
// suggestions: index candidates, caching hints, and slow-query warnings.
package optimizer

import (
	"sort"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

// Suggestion kinds.
const (
	SuggestIndex   = "index"
	SuggestCaching = "caching"
	SuggestReview  = "review"
)

// Suggestion severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Suggestion is one tuning recommendation derived from query metrics.
type Suggestion struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// IndexCandidate names a field worth indexing, with the query count that
// justified it.
type IndexCandidate struct {
	Field      string `json:"field"`
	QueryCount int    `json:"query_count"`
}

// Report is the outcome of one analysis pass.
type Report struct {
	Collection  string           `json:"collection,omitempty"`
	Suggestions []Suggestion     `json:"suggestions"`
	Indexes     []IndexCandidate `json:"indexes"`
}

// Options tunes analyzer thresholds. Zero values get defaults.
type Options struct {
	// SlowAvg flags the collection when the average query duration
	// exceeds it. Default 1s.
	SlowAvg time.Duration
	// MinHitRate flags the collection when the cache hit rate falls
	// below it. Default 0.5.
	MinHitRate float64
	// MinFieldQueries is the query count a field must exceed before it
	// becomes an index candidate. Default 10.
	MinFieldQueries int
	// MaxIndexes caps the number of index candidates per report. Default 5.
	MaxIndexes int

	Logger logger.Logger
}

// Analyzer derives tuning suggestions from query metrics snapshots.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(opts Options) *Analyzer {
	if opts.SlowAvg <= 0 {
		opts.SlowAvg = time.Second
	}
	if opts.MinHitRate <= 0 {
		opts.MinHitRate = 0.5
	}
	if opts.MinFieldQueries <= 0 {
		opts.MinFieldQueries = 10
	}
	if opts.MaxIndexes <= 0 {
		opts.MaxIndexes = 5
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	return &Analyzer{opts: opts}
}

// Analyze inspects the metrics and produces a report. A metrics value with
// no recorded queries yields an empty report, not an error.
func (a *Analyzer) Analyze(m database.QueryMetrics) *Report {
	report := &Report{Suggestions: []Suggestion{}, Indexes: []IndexCandidate{}}
	if m.QueryCount == 0 {
		return report
	}
	report.Collection = m.Collection

	if m.AvgDuration > a.opts.SlowAvg {
		report.Suggestions = append(report.Suggestions, Suggestion{
			Kind:     SuggestIndex,
			Severity: SeverityWarning,
			Message:  "average query duration " + m.AvgDuration.String() + " exceeds " + a.opts.SlowAvg.String() + "; add indexes on frequently filtered fields",
		})
	}

	if m.CacheHitRate < a.opts.MinHitRate {
		report.Suggestions = append(report.Suggestions, Suggestion{
			Kind:     SuggestCaching,
			Severity: SeverityInfo,
			Message:  "cache hit rate below threshold; enable query caching or raise TTLs for stable result sets",
		})
	}

	if n := len(m.SlowQueries); n > 0 {
		report.Suggestions = append(report.Suggestions, Suggestion{
			Kind:     SuggestReview,
			Severity: SeverityWarning,
			Message:  "slow queries recorded; review their filters and result sizes",
		})
		a.opts.Logger.Warn("slow queries detected", "count", n)
	}

	report.Indexes = a.SuggestIndexes(m.FieldFrequency)
	for _, idx := range report.Indexes {
		report.Suggestions = append(report.Suggestions, Suggestion{
			Kind:     SuggestIndex,
			Severity: SeverityInfo,
			Field:    idx.Field,
			Message:  "field queried frequently; consider an index",
		})
	}
	return report
}

// SuggestIndexes ranks filtered fields by query count and returns the top
// candidates queried strictly more often than the configured minimum.
func (a *Analyzer) SuggestIndexes(fieldFrequency map[string]int) []IndexCandidate {
	candidates := make([]IndexCandidate, 0, len(fieldFrequency))
	for field, count := range fieldFrequency {
		if count > a.opts.MinFieldQueries {
			candidates = append(candidates, IndexCandidate{Field: field, QueryCount: count})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].QueryCount != candidates[j].QueryCount {
			return candidates[i].QueryCount > candidates[j].QueryCount
		}
		return candidates[i].Field < candidates[j].Field
	})
	if len(candidates) > a.opts.MaxIndexes {
		candidates = candidates[:a.opts.MaxIndexes]
	}
	return candidates
}
