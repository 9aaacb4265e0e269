package database

import "testing"

func TestDocument_Clone(t *testing.T) {
	doc := Document{"id": "a", "nested": map[string]any{"k": "v"}}
	clone := doc.Clone()
	clone["id"] = "b"
	clone["nested"].(map[string]any)["k"] = "changed"

	if doc.ID() != "a" {
		t.Error("clone mutation leaked into original id")
	}
	if doc["nested"].(map[string]any)["k"] != "v" {
		t.Error("clone mutation leaked into nested map")
	}
}

func TestDocument_CloneNil(t *testing.T) {
	var doc Document
	if clone := doc.Clone(); clone != nil {
		t.Fatalf("nil document clone = %v, want nil", clone)
	}
}

func TestDocument_Merge(t *testing.T) {
	base := Document{"id": "a", "name": "old", "level": 1}
	merged := base.Merge(Document{"name": "new", "extra": true})

	if merged["name"] != "new" {
		t.Errorf("merged name = %v, want new", merged["name"])
	}
	if merged["level"] != 1 {
		t.Error("merge dropped untouched field")
	}
	if merged["extra"] != true {
		t.Error("merge dropped added field")
	}
	if base["name"] != "old" {
		t.Error("merge mutated the receiver")
	}
}

func TestDocument_ID(t *testing.T) {
	if got := (Document{"id": "x"}).ID(); got != "x" {
		t.Fatalf("ID() = %q, want x", got)
	}
	if got := (Document{"id": 42}).ID(); got != "" {
		t.Fatalf("non-string id should yield empty, got %q", got)
	}
	if got := (Document{}).ID(); got != "" {
		t.Fatalf("missing id should yield empty, got %q", got)
	}
}
