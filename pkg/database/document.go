// Package database defines the provider-agnostic storage contract: documents,
// queries, batch operations, subscriptions, and the Provider interface every
// concrete engine implements. Application code depends on this package and on
// the repositories built over it, never on a concrete engine's API.
package database

import (
	"context"
	"time"
)

// Document is the wire shape of a stored entity: a flat-or-nested map keyed by
// field name. Repositories translate between typed entities and Documents at
// the provider boundary.
type Document map[string]any

// ID returns the document's "id" field, or "" when absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Clone returns a shallow copy of the document. Nested maps are copied one
// level deep, which covers the patch/merge use cases in this layer.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		if m, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(m))
			for ik, iv := range m {
				inner[ik] = iv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}

// Merge applies patch on top of the document, returning the merged copy.
// Fields absent from patch are untouched.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	if out == nil {
		out = Document{}
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Operator is a query comparison operator.
type Operator string

// Supported query operators. Operator/type compatibility is a provider
// responsibility; this layer passes conditions through unchecked.
const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpNotIn      Operator = "not-in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts-with"
)

// Condition is a single field comparison, AND-combined with its siblings.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Where is shorthand for an equality condition.
func Where(field string, op Operator, value any) Condition {
	return Condition{Field: field, Op: op, Value: value}
}

// Order specifies a sort key and direction.
type Order struct {
	Field string
	Desc  bool
}

// CacheOptions tunes read caching for a single query. A zero TTL means the
// cache's default TTL applies.
type CacheOptions struct {
	TTL               time.Duration
	Tags              []string
	InvalidateOnWrite bool
}

// Query encapsulates filtering, ordering, pagination, projection, and caching
// for a collection read.
type Query struct {
	Where   []Condition
	OrderBy []Order
	Limit   int // 0 means unlimited
	Offset  int
	Select  []string // field projection; validated by the provider, not here
	Cache   *CacheOptions
}

// Validate rejects structurally malformed queries. Field existence and
// operator/type compatibility remain provider concerns.
func (q Query) Validate() error {
	if q.Limit < 0 {
		return &ValidationError{Reason: "limit must be non-negative"}
	}
	if q.Offset < 0 {
		return &ValidationError{Reason: "offset must be non-negative"}
	}
	for _, c := range q.Where {
		if c.Field == "" {
			return &ValidationError{Reason: "condition field must not be empty"}
		}
		switch c.Op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn, OpContains, OpStartsWith:
		default:
			return &ValidationError{Reason: "unknown operator " + string(c.Op)}
		}
	}
	return nil
}

// FilterFields returns the distinct fields the query filters on, in condition
// order. Used for query-frequency metrics.
func (q Query) FilterFields() []string {
	seen := make(map[string]bool, len(q.Where))
	fields := make([]string, 0, len(q.Where))
	for _, c := range q.Where {
		if !seen[c.Field] {
			seen[c.Field] = true
			fields = append(fields, c.Field)
		}
	}
	return fields
}

// QueryInfo is per-call execution metadata for a query.
type QueryInfo struct {
	Duration time.Duration
	Cached   bool
}

// InfoQuerier is an optional capability for providers that can report
// per-call execution metadata alongside query results.
type InfoQuerier interface {
	QueryDocs(ctx context.Context, collection string, q Query) ([]Document, QueryInfo, error)
}

// BatchOpType discriminates batch operations.
type BatchOpType string

// Batch operation types
const (
	BatchCreate BatchOpType = "create"
	BatchUpdate BatchOpType = "update"
	BatchDelete BatchOpType = "delete"
)

// BatchOperation is one element of a batch write. Data is ignored for deletes.
type BatchOperation struct {
	Type       BatchOpType
	Collection string
	ID         string
	Data       Document
}

// ConnectionStatus reports the state of the underlying engine connection.
type ConnectionStatus struct {
	Connected     bool
	Provider      string
	Latency       time.Duration
	LastConnected time.Time
	Offline       bool
}

// QueryMetrics is a provider-reported performance snapshot for one collection,
// consumed by the query optimizer.
type QueryMetrics struct {
	Collection     string
	QueryCount     int64
	AvgDuration    time.Duration
	CacheHitRate   float64
	SlowQueries    []SlowQuery
	FieldFrequency map[string]int
}

// SlowQuery describes one query that exceeded the provider's slow threshold.
type SlowQuery struct {
	Collection string
	Fields     []string
	Duration   time.Duration
	At         time.Time
}

// ConflictPolicy selects which side wins when an offline write collides with
// a newer server write.
type ConflictPolicy string

// Conflict resolution policies
const (
	ConflictClient ConflictPolicy = "client"
	ConflictServer ConflictPolicy = "server"
	ConflictManual ConflictPolicy = "manual"
)

// SyncStrategy selects when queued offline writes are pushed to the server.
type SyncStrategy string

// Offline sync strategies
const (
	SyncImmediate SyncStrategy = "immediate"
	SyncBatch     SyncStrategy = "batch"
	SyncScheduled SyncStrategy = "scheduled"
)

// OfflineOptions configures a provider's offline mode.
type OfflineOptions struct {
	Conflicts  ConflictPolicy
	Strategy   SyncStrategy
	MaxPending int
}

// ConflictRecord documents a sync conflict: both versions and which one won.
type ConflictRecord struct {
	Collection string
	ID         string
	Client     Document
	Server     Document
	Winner     ConflictPolicy // client, server, or manual (merged)
}

// SyncError is a per-operation failure during an offline flush.
type SyncError struct {
	OperationID string
	Collection  string
	ID          string
	Err         string
}

// SyncResult summarizes an offline flush.
type SyncResult struct {
	Synced    int
	Conflicts []ConflictRecord
	Errors    []SyncError
}
