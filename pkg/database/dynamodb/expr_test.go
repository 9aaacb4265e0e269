package dynamodb

import (
	"strings"
	"testing"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

func TestFilterExpressionEmpty(t *testing.T) {
	expr, names, values, err := filterExpression(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr != "" || names != nil || values != nil {
		t.Fatalf("expr=%q names=%v values=%v, want all empty", expr, names, values)
	}
}

func TestFilterExpressionOperators(t *testing.T) {
	tests := []struct {
		name string
		cond database.Condition
		want string
	}{
		{"eq", database.Where("name", database.OpEq, "Ada"), "#f0 = :v0"},
		{"ne", database.Where("name", database.OpNe, "Ada"), "#f0 <> :v0"},
		{"gt", database.Where("level", database.OpGt, 2), "#f0 > :v0"},
		{"gte", database.Where("level", database.OpGte, 2), "#f0 >= :v0"},
		{"lt", database.Where("level", database.OpLt, 2), "#f0 < :v0"},
		{"lte", database.Where("level", database.OpLte, 2), "#f0 <= :v0"},
		{"contains", database.Where("name", database.OpContains, "da"), "contains(#f0, :v0)"},
		{"starts with", database.Where("name", database.OpStartsWith, "A"), "begins_with(#f0, :v0)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, names, values, err := filterExpression([]database.Condition{tc.cond})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if expr != tc.want {
				t.Errorf("expr = %q, want %q", expr, tc.want)
			}
			if names["#f0"] != tc.cond.Field {
				t.Errorf("names = %v", names)
			}
			if _, ok := values[":v0"]; !ok {
				t.Errorf("values = %v, want :v0 bound", values)
			}
		})
	}
}

func TestFilterExpressionIn(t *testing.T) {
	expr, names, values, err := filterExpression([]database.Condition{
		database.Where("status", database.OpIn, []any{"active", "paused"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr != "#f0 IN (:v0_0, :v0_1)" {
		t.Errorf("expr = %q", expr)
	}
	if names["#f0"] != "status" {
		t.Errorf("names = %v", names)
	}
	if len(values) != 2 {
		t.Errorf("values = %v, want two bindings", values)
	}
}

func TestFilterExpressionNotIn(t *testing.T) {
	expr, _, _, err := filterExpression([]database.Condition{
		database.Where("status", database.OpNotIn, []string{"abandoned"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr != "NOT (#f0 IN (:v0_0))" {
		t.Errorf("expr = %q", expr)
	}
}

func TestFilterExpressionCombinesWithAnd(t *testing.T) {
	expr, names, _, err := filterExpression([]database.Condition{
		database.Where("account_id", database.OpEq, "acc1"),
		database.Where("level", database.OpGte, 2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr != "#f0 = :v0 AND #f1 >= :v1" {
		t.Errorf("expr = %q", expr)
	}
	if names["#f1"] != "level" {
		t.Errorf("names = %v", names)
	}
}

func TestFilterExpressionErrors(t *testing.T) {
	if _, _, _, err := filterExpression([]database.Condition{
		database.Where("status", database.OpIn, "not-a-slice"),
	}); !database.IsValidation(err) {
		t.Errorf("scalar in: got %v, want validation error", err)
	}
	if _, _, _, err := filterExpression([]database.Condition{
		database.Where("level", "between", 2),
	}); !database.IsValidation(err) {
		t.Errorf("unknown operator: got %v, want validation error", err)
	}
}

func TestUpdateExpression(t *testing.T) {
	expr, names, values := updateExpression(database.Document{
		"id":    "a1",
		"name":  "Ada",
		"level": 3,
	})

	if !strings.HasPrefix(expr, "SET ") {
		t.Fatalf("expr = %q", expr)
	}
	if strings.Count(expr, "=") != 2 {
		t.Errorf("expr = %q, id must be excluded from the patch", expr)
	}
	fields := make(map[string]bool)
	for _, f := range names {
		fields[f] = true
	}
	if !fields["name"] || !fields["level"] || fields["id"] {
		t.Errorf("names = %v", names)
	}
	if len(values) != 2 {
		t.Errorf("values = %v", values)
	}
	for _, v := range values {
		if v == nil {
			t.Error("nil attribute value")
		}
	}
}

func TestUpdateExpressionOnlyID(t *testing.T) {
	expr, names, values := updateExpression(database.Document{"id": "a1"})
	if expr != "" || names != nil || values != nil {
		t.Fatalf("expr=%q names=%v values=%v, want empty", expr, names, values)
	}
}

func TestElements(t *testing.T) {
	got, err := elements([]string{"a", "b"})
	if err != nil || len(got) != 2 || got[1] != "b" {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := elements(42); !database.IsValidation(err) {
		t.Errorf("scalar: got %v, want validation error", err)
	}
}
