package dynamodb

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

// toItem converts a contract document to a DynamoDB item. Time values are
// stored as RFC 3339 strings; numbers are stored as DynamoDB numbers and read
// back as float64.
func toItem(doc database.Document) map[string]types.AttributeValue {
	item := make(map[string]types.AttributeValue, len(doc))
	for k, v := range doc {
		item[k] = toAttr(v)
	}
	return item
}

func toAttr(v any) types.AttributeValue {
	switch t := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}
	case string:
		return &types.AttributeValueMemberS{Value: t}
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}
	case int:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(t), 10)}
	case int32:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(t), 10)}
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(t, 10)}
	case float32:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(float64(t), 'g', -1, 64)}
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(t, 'g', -1, 64)}
	case time.Time:
		return &types.AttributeValueMemberS{Value: t.UTC().Format(time.RFC3339Nano)}
	case []string:
		l := make([]types.AttributeValue, len(t))
		for i, e := range t {
			l[i] = toAttr(e)
		}
		return &types.AttributeValueMemberL{Value: l}
	case []any:
		l := make([]types.AttributeValue, len(t))
		for i, e := range t {
			l[i] = toAttr(e)
		}
		return &types.AttributeValueMemberL{Value: l}
	case map[string]any:
		m := make(map[string]types.AttributeValue, len(t))
		for k, e := range t {
			m[k] = toAttr(e)
		}
		return &types.AttributeValueMemberM{Value: m}
	case database.Document:
		return toAttr(map[string]any(t))
	default:
		return &types.AttributeValueMemberS{Value: strconv.Quote(stringify(t))}
	}
}

func stringify(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// fromItem converts a DynamoDB item back into a contract document.
func fromItem(item map[string]types.AttributeValue) database.Document {
	doc := make(database.Document, len(item))
	for k, v := range item {
		doc[k] = fromAttr(v)
	}
	return doc
}

func fromAttr(v types.AttributeValue) any {
	switch t := v.(type) {
	case *types.AttributeValueMemberNULL:
		return nil
	case *types.AttributeValueMemberS:
		return t.Value
	case *types.AttributeValueMemberBOOL:
		return t.Value
	case *types.AttributeValueMemberN:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return t.Value
		}
		return f
	case *types.AttributeValueMemberL:
		l := make([]any, len(t.Value))
		for i, e := range t.Value {
			l[i] = fromAttr(e)
		}
		return l
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(t.Value))
		for k, e := range t.Value {
			m[k] = fromAttr(e)
		}
		return m
	case *types.AttributeValueMemberSS:
		l := make([]any, len(t.Value))
		for i, e := range t.Value {
			l[i] = e
		}
		return l
	default:
		return nil
	}
}
