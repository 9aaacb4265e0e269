// Package migration copies collections between storage providers and
// verifies the result, for moving data across engines.
package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

// RecordError is a per-document failure during a migration.
type RecordError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Result summarizes one collection migration.
type Result struct {
	Collection string        `json:"collection"`
	Migrated   int           `json:"migrated"`
	Errors     []RecordError `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Validation compares a collection between source and target after a
// migration.
type Validation struct {
	Collection  string   `json:"collection"`
	SourceCount int64    `json:"source_count"`
	TargetCount int64    `json:"target_count"`
	MissingIDs  []string `json:"missing_ids,omitempty"`
	Valid       bool     `json:"valid"`
}

// Options configures the migrator.
type Options struct {
	// BatchSize is the number of documents read and written per chunk.
	// Default 100.
	BatchSize int
	Logger    logger.Logger
}

// Migrator copies documents from a source provider to a target provider.
type Migrator struct {
	source database.Provider
	target database.Provider
	batch  int
	logger logger.Logger
}

// Cosa fa: crea un migrator tra due provider già connessi.
// Cosa NON fa: non apre né chiude le connessioni dei provider.
// Esempio minimo: m := migration.New(src, dst, migration.Options{})
func New(source, target database.Provider, opts Options) *Migrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Migrator{source: source, target: target, batch: opts.BatchSize, logger: log}
}

// MigrateCollection copies every document in the collection from source to
// target in batches. Documents already present in the target are overwritten.
// Per-document failures are collected, not fatal; the context is checked
// between batches so long migrations cancel cleanly.
func (m *Migrator) MigrateCollection(ctx context.Context, collection string) (*Result, error) {
	start := time.Now()
	result := &Result{Collection: collection}

	for offset := 0; ; offset += m.batch {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		docs, err := m.source.Query(ctx, collection, database.Query{
			OrderBy: []database.Order{{Field: "id"}},
			Limit:   m.batch,
			Offset:  offset,
		})
		if err != nil {
			return result, fmt.Errorf("failed to read source batch at offset %d: %w", offset, err)
		}
		if len(docs) == 0 {
			break
		}

		for _, doc := range docs {
			id := doc.ID()
			if err := m.copyDocument(ctx, collection, id, doc); err != nil {
				result.Errors = append(result.Errors, RecordError{ID: id, Error: err.Error()})
				continue
			}
			result.Migrated++
		}

		m.logger.Debug("migrated batch", "collection", collection, "offset", offset, "count", len(docs))
		if len(docs) < m.batch {
			break
		}
	}

	result.Duration = time.Since(start)
	m.logger.Info("collection migrated",
		"collection", collection,
		"migrated", result.Migrated,
		"errors", len(result.Errors),
		"duration", result.Duration.String(),
	)
	return result, nil
}

// copyDocument upserts a single document into the target.
func (m *Migrator) copyDocument(ctx context.Context, collection, id string, doc database.Document) error {
	_, err := m.target.Create(ctx, collection, doc, id)
	if err == nil {
		return nil
	}
	if !database.IsConflict(err) {
		return err
	}
	return m.target.Update(ctx, collection, id, doc)
}

// ValidateMigration compares counts and spot-checks that every source id
// exists in the target. Valid requires the counts to match exactly: extra
// target documents fail validation just like missing ones, since they mean
// the target holds data the source does not account for.
func (m *Migrator) ValidateMigration(ctx context.Context, collection string) (*Validation, error) {
	v := &Validation{Collection: collection}

	sourceCount, err := m.source.Count(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count source: %w", err)
	}
	targetCount, err := m.target.Count(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count target: %w", err)
	}
	v.SourceCount = sourceCount
	v.TargetCount = targetCount

	for offset := 0; ; offset += m.batch {
		if err := ctx.Err(); err != nil {
			return v, err
		}
		docs, err := m.source.Query(ctx, collection, database.Query{
			OrderBy: []database.Order{{Field: "id"}},
			Limit:   m.batch,
			Offset:  offset,
			Select:  []string{"id"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read source ids at offset %d: %w", offset, err)
		}
		if len(docs) == 0 {
			break
		}
		for _, doc := range docs {
			id := doc.ID()
			found, err := m.target.Read(ctx, collection, id)
			if err != nil {
				return nil, fmt.Errorf("failed to read target document %s: %w", id, err)
			}
			if found == nil {
				v.MissingIDs = append(v.MissingIDs, id)
			}
		}
		if len(docs) < m.batch {
			break
		}
	}

	v.Valid = len(v.MissingIDs) == 0 && v.TargetCount == v.SourceCount
	return v, nil
}

// MigrateAll migrates each named collection in order and returns the
// per-collection results. It stops at the first collection-level failure.
func (m *Migrator) MigrateAll(ctx context.Context, collections []string) ([]*Result, error) {
	results := make([]*Result, 0, len(collections))
	for _, c := range collections {
		res, err := m.MigrateCollection(ctx, c)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
