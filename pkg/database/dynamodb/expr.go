package dynamodb

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

// filterExpression builds a DynamoDB filter expression from contract
// conditions. Returns empty expression when there are no conditions.
func filterExpression(where []database.Condition) (expr string, names map[string]string, values map[string]types.AttributeValue, err error) {
	if len(where) == 0 {
		return "", nil, nil, nil
	}

	names = make(map[string]string)
	values = make(map[string]types.AttributeValue)
	clauses := make([]string, 0, len(where))

	for i, c := range where {
		name := fmt.Sprintf("#f%d", i)
		names[name] = c.Field

		switch c.Op {
		case database.OpEq:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("%s = %s", name, v))
		case database.OpNe:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("%s <> %s", name, v))
		case database.OpGt:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("%s > %s", name, v))
		case database.OpGte:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("%s >= %s", name, v))
		case database.OpLt:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("%s < %s", name, v))
		case database.OpLte:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("%s <= %s", name, v))
		case database.OpIn, database.OpNotIn:
			elems, elemErr := elements(c.Value)
			if elemErr != nil {
				return "", nil, nil, elemErr
			}
			placeholders := make([]string, len(elems))
			for j, e := range elems {
				v := fmt.Sprintf(":v%d_%d", i, j)
				values[v] = toAttr(e)
				placeholders[j] = v
			}
			in := fmt.Sprintf("%s IN (%s)", name, strings.Join(placeholders, ", "))
			if c.Op == database.OpNotIn {
				in = "NOT (" + in + ")"
			}
			clauses = append(clauses, in)
		case database.OpContains:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("contains(%s, %s)", name, v))
		case database.OpStartsWith:
			v := fmt.Sprintf(":v%d", i)
			values[v] = toAttr(c.Value)
			clauses = append(clauses, fmt.Sprintf("begins_with(%s, %s)", name, v))
		default:
			return "", nil, nil, &database.ValidationError{Reason: fmt.Sprintf("unknown operator %s", c.Op)}
		}
	}

	return strings.Join(clauses, " AND "), names, values, nil
}

// updateExpression builds a SET expression applying the patch as a merge.
func updateExpression(patch database.Document) (expr string, names map[string]string, values map[string]types.AttributeValue) {
	names = make(map[string]string, len(patch))
	values = make(map[string]types.AttributeValue, len(patch))
	sets := make([]string, 0, len(patch))

	i := 0
	for k, v := range patch {
		if k == "id" {
			continue
		}
		name := fmt.Sprintf("#u%d", i)
		value := fmt.Sprintf(":u%d", i)
		names[name] = k
		values[value] = toAttr(v)
		sets = append(sets, fmt.Sprintf("%s = %s", name, value))
		i++
	}
	if len(sets) == 0 {
		return "", nil, nil
	}
	return "SET " + strings.Join(sets, ", "), names, values
}

func elements(v any) ([]any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, &database.ValidationError{Reason: "in/not-in requires a slice value"}
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
