package mongodb

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

// fieldName maps the contract's "id" field onto Mongo's primary key.
func fieldName(f string) string {
	if f == "id" {
		return "_id"
	}
	return f
}

// toFilter translates contract conditions into a bson filter document.
// Conditions are AND-combined; conditions on the same field merge into one
// operator document.
func toFilter(where []database.Condition) (bson.M, error) {
	filter := bson.M{}
	for _, c := range where {
		field := fieldName(c.Field)
		var clause bson.M
		switch c.Op {
		case database.OpEq:
			clause = bson.M{"$eq": c.Value}
		case database.OpNe:
			clause = bson.M{"$ne": c.Value}
		case database.OpGt:
			clause = bson.M{"$gt": c.Value}
		case database.OpGte:
			clause = bson.M{"$gte": c.Value}
		case database.OpLt:
			clause = bson.M{"$lt": c.Value}
		case database.OpLte:
			clause = bson.M{"$lte": c.Value}
		case database.OpIn:
			clause = bson.M{"$in": c.Value}
		case database.OpNotIn:
			clause = bson.M{"$nin": c.Value}
		case database.OpContains:
			s, ok := c.Value.(string)
			if !ok {
				// Non-string contains degrades to array membership.
				clause = bson.M{"$eq": c.Value}
				break
			}
			clause = bson.M{"$regex": regexp.QuoteMeta(s)}
		case database.OpStartsWith:
			s, ok := c.Value.(string)
			if !ok {
				return nil, &database.ValidationError{Reason: "starts-with requires a string value"}
			}
			clause = bson.M{"$regex": "^" + regexp.QuoteMeta(s)}
		default:
			return nil, &database.ValidationError{Reason: fmt.Sprintf("unknown operator %s", c.Op)}
		}

		if existing, ok := filter[field].(bson.M); ok {
			for op, v := range clause {
				existing[op] = v
			}
			continue
		}
		filter[field] = clause
	}
	return filter, nil
}

// findOptions translates ordering, pagination, and projection.
func findOptions(q database.Query) *options.FindOptions {
	opts := options.Find()
	if len(q.OrderBy) > 0 {
		sortDoc := bson.D{}
		for _, o := range q.OrderBy {
			dir := 1
			if o.Desc {
				dir = -1
			}
			sortDoc = append(sortDoc, bson.E{Key: fieldName(o.Field), Value: dir})
		}
		opts.SetSort(sortDoc)
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if len(q.Select) > 0 {
		projection := bson.M{"_id": 1}
		for _, f := range q.Select {
			projection[fieldName(f)] = 1
		}
		opts.SetProjection(projection)
	}
	return opts
}

// fromBSON converts a decoded bson document into the contract Document,
// folding _id back into the id field.
func fromBSON(m bson.M) database.Document {
	doc := make(database.Document, len(m))
	for k, v := range m {
		if k == "_id" {
			doc["id"] = idString(v)
			continue
		}
		doc[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, iv := range t {
			out[k] = fromBSONValue(iv)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = fromBSONValue(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, iv := range t {
			out[i] = fromBSONValue(iv)
		}
		return out
	case primitive.DateTime:
		return t.Time()
	default:
		return v
	}
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case primitive.ObjectID:
		return t.Hex()
	default:
		return fmt.Sprint(t)
	}
}
