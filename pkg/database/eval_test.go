package database

import (
	"testing"
	"time"
)

func testDocs() []Document {
	return []Document{
		{"id": "a", "name": "algebra basics", "level": 1, "tags": []any{"math", "intro"}},
		{"id": "b", "name": "calculus", "level": 3, "tags": []any{"math"}},
		{"id": "c", "name": "chemistry", "level": 2, "tags": []any{"science"}},
		{"id": "d", "name": "geometry", "level": 2},
	}
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID()
	}
	return out
}

func TestMatch_Operators(t *testing.T) {
	doc := Document{"id": "x", "name": "algebra", "level": 2, "tags": []any{"math", "intro"}, "active": true}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"eq match", Where("level", OpEq, 2), true},
		{"eq int vs float", Where("level", OpEq, 2.0), true},
		{"eq mismatch", Where("level", OpEq, 3), false},
		{"ne on absent field", Where("missing", OpNe, 1), true},
		{"gt", Where("level", OpGt, 1), true},
		{"gte boundary", Where("level", OpGte, 2), true},
		{"lt", Where("level", OpLt, 2), false},
		{"lte boundary", Where("level", OpLte, 2), true},
		{"in", Where("name", OpIn, []any{"algebra", "calculus"}), true},
		{"in miss", Where("name", OpIn, []any{"calculus"}), false},
		{"not-in", Where("name", OpNotIn, []any{"calculus"}), true},
		{"not-in absent field", Where("missing", OpNotIn, []any{"x"}), true},
		{"contains substring", Where("name", OpContains, "geb"), true},
		{"contains slice member", Where("tags", OpContains, "math"), true},
		{"contains slice miss", Where("tags", OpContains, "history"), false},
		{"starts-with", Where("name", OpStartsWith, "alg"), true},
		{"starts-with miss", Where("name", OpStartsWith, "gebra"), false},
		{"gt on absent field", Where("missing", OpGt, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(doc, tt.cond); got != tt.want {
				t.Fatalf("Match(%v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestApplyQuery_FilterAndOrder(t *testing.T) {
	out := ApplyQuery(testDocs(), Query{
		Where:   []Condition{Where("level", OpGte, 2)},
		OrderBy: []Order{{Field: "level", Desc: true}, {Field: "name"}},
	})

	got := ids(out)
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestApplyQuery_DefaultOrderIsStableByID(t *testing.T) {
	docs := []Document{
		{"id": "z"}, {"id": "a"}, {"id": "m"},
	}
	out := ApplyQuery(docs, Query{})
	got := ids(out)
	want := []string{"a", "m", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestApplyQuery_OffsetLimit(t *testing.T) {
	out := ApplyQuery(testDocs(), Query{Offset: 1, Limit: 2})
	got := ids(out)
	want := []string{"b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if res := ApplyQuery(testDocs(), Query{Offset: 10}); len(res) != 0 {
		t.Fatalf("offset past end should return empty slice, got %d docs", len(res))
	}
}

func TestApplyQuery_ProjectionKeepsID(t *testing.T) {
	out := ApplyQuery(testDocs(), Query{
		Where:  []Condition{Where("id", OpEq, "b")},
		Select: []string{"name"},
	})
	if len(out) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(out))
	}
	doc := out[0]
	if doc.ID() != "b" {
		t.Fatalf("projection dropped id: %v", doc)
	}
	if doc["name"] != "calculus" {
		t.Fatalf("projection dropped selected field: %v", doc)
	}
	if _, ok := doc["level"]; ok {
		t.Fatalf("projection kept unselected field: %v", doc)
	}
}

func TestApplyQuery_ReturnsClones(t *testing.T) {
	docs := testDocs()
	out := ApplyQuery(docs, Query{})
	out[0]["name"] = "mutated"
	if docs[0]["name"] == "mutated" {
		t.Fatal("ApplyQuery returned aliased documents")
	}
}

func TestCompare_MixedTypes(t *testing.T) {
	if Compare(1, 2) >= 0 {
		t.Error("1 should order before 2")
	}
	if Compare(int64(5), 5.0) != 0 {
		t.Error("int64(5) and 5.0 should compare equal")
	}
	if Compare("a", "b") >= 0 {
		t.Error("a should order before b")
	}
	if Compare(false, true) >= 0 {
		t.Error("false should order before true")
	}
	now := time.Now()
	if Compare(now, now.Add(time.Hour)) >= 0 {
		t.Error("earlier time should order before later time")
	}
	if Compare(now, now) != 0 {
		t.Error("equal times should compare equal")
	}
}

func TestQuery_Validate(t *testing.T) {
	valid := Query{Where: []Condition{Where("name", OpEq, "x")}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	empty := Query{Where: []Condition{{Field: "", Op: OpEq}}}
	if err := empty.Validate(); err == nil {
		t.Fatal("expected error for empty field")
	}

	badOp := Query{Where: []Condition{{Field: "name", Op: "between"}}}
	err := badOp.Validate()
	if err == nil {
		t.Fatal("expected error for unknown operator")
	}
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %T", err)
	}
}

func TestQuery_FilterFields(t *testing.T) {
	q := Query{Where: []Condition{
		Where("a", OpEq, 1),
		Where("b", OpGt, 2),
		Where("a", OpLt, 9),
	}}
	fields := q.FilterFields()
	if len(fields) != 2 || fields[0] != "a" || fields[1] != "b" {
		t.Fatalf("FilterFields = %v, want [a b]", fields)
	}
}
