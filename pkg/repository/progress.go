package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
)

// ProgressRepository provides per-topic progress tracking.
type ProgressRepository struct {
	*Repository[domain.ProgressRecord]
}

// NewProgressRepository creates a repository bound to the progress collection.
func NewProgressRepository(provider database.Provider) *ProgressRepository {
	return &ProgressRepository{Repository: New[domain.ProgressRecord](provider, domain.CollectionProgress)}
}

// progressID derives the deterministic record id for an account/topic pair,
// so retried upserts converge on a single record.
func progressID(accountID, topicID string) string {
	return fmt.Sprintf("%s:%s", accountID, topicID)
}

// FindByAccount returns all progress records for an account.
func (r *ProgressRepository) FindByAccount(ctx context.Context, accountID string) ([]*domain.ProgressRecord, error) {
	return r.FindByField(ctx, "account_id", accountID)
}

// FindByTopic returns the progress record for an account/topic pair, or nil.
func (r *ProgressRepository) FindByTopic(ctx context.Context, accountID, topicID string) (*domain.ProgressRecord, error) {
	return r.FindByID(ctx, progressID(accountID, topicID))
}

// UpdateProgress merges the given fields into the account's record for the
// topic, creating it with zero counters when no record exists yet. The
// read-then-write is not atomic; concurrent first writes for the same pair
// surface as a conflict on the second create, which callers retry.
func (r *ProgressRepository) UpdateProgress(ctx context.Context, accountID, topicID string, fields database.Document) (*domain.ProgressRecord, error) {
	id := progressID(accountID, topicID)
	now := time.Now().UTC()

	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		// Seed: zero completion, streak and time, lastStudied = now. Caller
		// fields override the seeds via the merge below.
		record := &domain.ProgressRecord{
			ID:          id,
			AccountID:   accountID,
			TopicID:     topicID,
			LastStudied: now,
			UpdatedAt:   now,
		}
		doc, err := r.codec.ToDocument(record)
		if err != nil {
			return nil, err
		}
		doc = doc.Merge(fields)
		doc["updated_at"] = now.Format(time.RFC3339Nano)
		stored, err := r.provider.Create(ctx, r.collection, doc, id)
		if err != nil {
			if database.IsConflict(err) {
				// Lost the race; fall through to update the winner's record.
				return r.mergeExisting(ctx, id, fields, now)
			}
			return nil, err
		}
		return r.codec.FromDocument(stored)
	}

	return r.mergeExisting(ctx, id, fields, now)
}

func (r *ProgressRepository) mergeExisting(ctx context.Context, id string, fields database.Document, now time.Time) (*domain.ProgressRecord, error) {
	patch := fields.Clone()
	patch["updated_at"] = now.Format(time.RFC3339Nano)
	return r.Update(ctx, id, patch)
}

// FindDuplicates returns account/topic pairs stored under more than one
// record id. Deterministic ids make duplicates impossible for new writes;
// this surfaces records migrated from stores that used random ids.
func (r *ProgressRepository) FindDuplicates(ctx context.Context) (map[string][]string, error) {
	records, err := r.FindAll(ctx, database.Query{})
	if err != nil {
		return nil, err
	}

	byPair := make(map[string][]string)
	for _, rec := range records {
		key := progressID(rec.AccountID, rec.TopicID)
		byPair[key] = append(byPair[key], rec.ID)
	}

	dups := make(map[string][]string)
	for key, ids := range byPair {
		if len(ids) > 1 {
			dups[key] = ids
		}
	}
	return dups, nil
}
