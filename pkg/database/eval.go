package database

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// ApplyQuery evaluates a validated query client-side: filtering, ordering,
// offset/limit, and projection. Engines without full server-side query
// support (and the in-memory engine) use it to honor the contract; engines
// that push filtering down still use it for the parts their query language
// cannot express. The returned documents are projected clones.
func ApplyQuery(docs []Document, q Query) []Document {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if MatchAll(doc, q.Where) {
			out = append(out, doc)
		}
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.OrderBy {
				c := Compare(out[i][o.Field], out[j][o.Field])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	} else {
		// Stabilize by id so pagination without an explicit order is
		// deterministic regardless of input order.
		sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[q.Offset:]
		}
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}

	cloned := make([]Document, len(out))
	for i, doc := range out {
		cloned[i] = project(doc, q.Select)
	}
	return cloned
}

// MatchAll reports whether doc satisfies every condition (AND semantics).
func MatchAll(doc Document, where []Condition) bool {
	for _, c := range where {
		if !Match(doc, c) {
			return false
		}
	}
	return true
}

// Match reports whether doc satisfies a single condition.
func Match(doc Document, c Condition) bool {
	value, ok := doc[c.Field]
	switch c.Op {
	case OpEq:
		return ok && Compare(value, c.Value) == 0
	case OpNe:
		return !ok || Compare(value, c.Value) != 0
	case OpGt:
		return ok && Compare(value, c.Value) > 0
	case OpGte:
		return ok && Compare(value, c.Value) >= 0
	case OpLt:
		return ok && Compare(value, c.Value) < 0
	case OpLte:
		return ok && Compare(value, c.Value) <= 0
	case OpIn:
		return ok && member(c.Value, value)
	case OpNotIn:
		return !ok || !member(c.Value, value)
	case OpContains:
		if !ok {
			return false
		}
		if s, isStr := value.(string); isStr {
			needle, _ := c.Value.(string)
			return strings.Contains(s, needle)
		}
		return member(value, c.Value)
	case OpStartsWith:
		s, isStr := value.(string)
		prefix, _ := c.Value.(string)
		return ok && isStr && strings.HasPrefix(s, prefix)
	default:
		return false
	}
}

// member reports whether needle occurs in the slice haystack.
func member(haystack, needle any) bool {
	v := reflect.ValueOf(haystack)
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if Compare(v.Index(i).Interface(), needle) == 0 {
			return true
		}
	}
	return false
}

// Compare orders two loosely-typed values: numerics as float64, strings
// lexically, times chronologically, false before true. Incomparable values
// order by their string rendering so sorting stays total.
func Compare(a, b any) int {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// project applies field selection, always carrying the id. An empty selection
// clones the whole document.
func project(doc Document, fields []string) Document {
	if len(fields) == 0 {
		return doc.Clone()
	}
	out := Document{"id": doc["id"]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
