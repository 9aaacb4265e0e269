package memory

import "github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"

// evaluate runs a validated query against a collection map. Caller holds at
// least a read lock.
func evaluate(docs map[string]database.Document, q database.Query) []database.Document {
	all := make([]database.Document, 0, len(docs))
	for _, doc := range docs {
		all = append(all, doc)
	}
	return database.ApplyQuery(all, q)
}

func matchAll(doc database.Document, where []database.Condition) bool {
	return database.MatchAll(doc, where)
}
