package dynamodb

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

func TestToAttrScalars(t *testing.T) {
	if got, ok := toAttr("Ada").(*types.AttributeValueMemberS); !ok || got.Value != "Ada" {
		t.Errorf("string: %#v", toAttr("Ada"))
	}
	if got, ok := toAttr(true).(*types.AttributeValueMemberBOOL); !ok || !got.Value {
		t.Errorf("bool: %#v", toAttr(true))
	}
	if got, ok := toAttr(42).(*types.AttributeValueMemberN); !ok || got.Value != "42" {
		t.Errorf("int: %#v", toAttr(42))
	}
	if got, ok := toAttr(2.5).(*types.AttributeValueMemberN); !ok || got.Value != "2.5" {
		t.Errorf("float: %#v", toAttr(2.5))
	}
	if got, ok := toAttr(nil).(*types.AttributeValueMemberNULL); !ok || !got.Value {
		t.Errorf("nil: %#v", toAttr(nil))
	}
}

func TestToAttrTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	got, ok := toAttr(at).(*types.AttributeValueMemberS)
	if !ok || got.Value != "2026-03-01T12:30:00Z" {
		t.Fatalf("time: %#v", toAttr(at))
	}
}

func TestItemRoundTrip(t *testing.T) {
	doc := database.Document{
		"id":     "a1",
		"name":   "Ada",
		"active": true,
		"scores": []any{1, 2, 3},
		"profile": map[string]any{
			"persona": "student",
			"level":   3,
		},
		"note": nil,
	}

	back := fromItem(toItem(doc))

	if back["id"] != "a1" || back["name"] != "Ada" || back["active"] != true {
		t.Errorf("scalars = %#v", back)
	}
	if back["note"] != nil {
		t.Errorf("note = %#v, want nil", back["note"])
	}
	scores, ok := back["scores"].([]any)
	if !ok || len(scores) != 3 {
		t.Fatalf("scores = %#v", back["scores"])
	}
	// Numbers come back as float64.
	if database.Compare(scores[0], 1) != 0 {
		t.Errorf("scores[0] = %#v", scores[0])
	}
	profile, ok := back["profile"].(map[string]any)
	if !ok || profile["persona"] != "student" {
		t.Fatalf("profile = %#v", back["profile"])
	}
	if database.Compare(profile["level"], 3) != 0 {
		t.Errorf("level = %#v", profile["level"])
	}
}

func TestFromAttrStringSet(t *testing.T) {
	got := fromAttr(&types.AttributeValueMemberSS{Value: []string{"a", "b"}})
	l, ok := got.([]any)
	if !ok || len(l) != 2 || l[0] != "a" {
		t.Fatalf("string set = %#v", got)
	}
}

func TestFromAttrUnparsableNumber(t *testing.T) {
	if got := fromAttr(&types.AttributeValueMemberN{Value: "not-a-number"}); got != "not-a-number" {
		t.Errorf("got %#v, want raw string preserved", got)
	}
}
