package mongodb

import (
	"errors"
	"strings"
	"testing"
)

func TestOrderedOutcome(t *testing.T) {
	dup := errors.New("E11000 duplicate key")

	applied, failed := orderedOutcome(4, map[int]error{1: dup}, "accounts")

	if len(applied) != 1 || applied[0] != 0 {
		t.Fatalf("applied = %v, want [0]", applied)
	}
	if len(failed) != 3 {
		t.Fatalf("failed = %d positions, want 3 (the error and the unattempted tail)", len(failed))
	}
	if failed[0].pos != 1 || !errors.Is(failed[0].err, dup) {
		t.Fatalf("first failure = %+v, want position 1 with the write error", failed[0])
	}
	for _, f := range failed[1:] {
		if !strings.Contains(f.err.Error(), "not attempted") {
			t.Fatalf("tail position %d error = %v, want not-attempted marker", f.pos, f.err)
		}
	}
}

func TestOrderedOutcomeFirstPositionFails(t *testing.T) {
	applied, failed := orderedOutcome(2, map[int]error{0: errors.New("boom")}, "accounts")
	if len(applied) != 0 {
		t.Fatalf("applied = %v, want none", applied)
	}
	if len(failed) != 2 || failed[0].pos != 0 || failed[1].pos != 1 {
		t.Fatalf("failed = %+v, want positions 0 and 1", failed)
	}
}
