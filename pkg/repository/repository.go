// Package repository provides typed data access on top of the storage
// provider contract. A Repository maps a Go entity type onto a document
// collection and exposes CRUD, search, and subscription operations.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

// EntityCodec defines how to map between entities and documents.
type EntityCodec[T domain.Entity] interface {
	// ToDocument converts an entity to a document for writes.
	ToDocument(entity *T) (database.Document, error)

	// FromDocument converts a stored document back into an entity.
	FromDocument(doc database.Document) (*T, error)
}

// JSONCodec maps entities to documents through their json tags. It is the
// default codec; custom codecs only make sense for types with fields that
// do not survive a JSON round trip.
type JSONCodec[T domain.Entity] struct{}

func (JSONCodec[T]) ToDocument(entity *T) (database.Document, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}
	var doc database.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode entity document: %w", err)
	}
	return doc, nil
}

func (JSONCodec[T]) FromDocument(doc database.Document) (*T, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	entity := new(T)
	if err := json.Unmarshal(raw, entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return entity, nil
}

// Repository provides typed access to a single collection.
type Repository[T domain.Entity] struct {
	provider   database.Provider
	collection string
	codec      EntityCodec[T]
	log        logger.Logger
}

// New creates a repository for the given collection using the JSON codec.
func New[T domain.Entity](provider database.Provider, collection string) *Repository[T] {
	return NewWithCodec[T](provider, collection, JSONCodec[T]{})
}

// NewWithCodec creates a repository with a custom entity codec.
func NewWithCodec[T domain.Entity](provider database.Provider, collection string, codec EntityCodec[T]) *Repository[T] {
	return &Repository[T]{provider: provider, collection: collection, codec: codec, log: logger.NopLogger{}}
}

// WithLogger routes decode warnings from subscription callbacks to log.
// Returns the repository for chaining.
func (r *Repository[T]) WithLogger(log logger.Logger) *Repository[T] {
	if log != nil {
		r.log = log
	}
	return r
}

// Collection returns the collection name this repository operates on.
func (r *Repository[T]) Collection() string { return r.collection }

// Provider exposes the underlying provider, for operations the typed
// surface does not cover.
func (r *Repository[T]) Provider() database.Provider { return r.provider }

// FindByID returns the entity with the given id, or nil if absent.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	doc, err := r.provider.Read(ctx, r.collection, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return r.codec.FromDocument(doc)
}

// FindAll returns all entities matching the query.
func (r *Repository[T]) FindAll(ctx context.Context, q database.Query) ([]*T, error) {
	docs, err := r.provider.Query(ctx, r.collection, q)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(docs)
}

// FindWhere returns entities matching the given conditions.
func (r *Repository[T]) FindWhere(ctx context.Context, conds ...database.Condition) ([]*T, error) {
	return r.FindAll(ctx, database.Query{Where: conds})
}

// FindByField returns entities whose field equals the given value.
func (r *Repository[T]) FindByField(ctx context.Context, field string, value any) ([]*T, error) {
	return r.FindWhere(ctx, database.Where(field, database.OpEq, value))
}

// FindOneByField returns the first entity whose field equals the value,
// or nil if none match.
func (r *Repository[T]) FindOneByField(ctx context.Context, field string, value any) (*T, error) {
	docs, err := r.provider.Query(ctx, r.collection, database.Query{
		Where: []database.Condition{database.Where(field, database.OpEq, value)},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return r.codec.FromDocument(docs[0])
}

// Exists reports whether an entity with the given id is stored.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	doc, err := r.provider.Read(ctx, r.collection, id)
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}

// Count returns the number of entities matching the query conditions.
func (r *Repository[T]) Count(ctx context.Context, conds ...database.Condition) (int64, error) {
	return r.provider.Count(ctx, r.collection, conds)
}

// Create stores a new entity. When the entity's id is empty the provider
// assigns one and the stored entity is returned.
func (r *Repository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, &database.ValidationError{Reason: "entity cannot be nil"}
	}
	doc, err := r.codec.ToDocument(entity)
	if err != nil {
		return nil, err
	}
	stored, err := r.provider.Create(ctx, r.collection, doc, doc.ID())
	if err != nil {
		return nil, err
	}
	return r.codec.FromDocument(stored)
}

// Update merges the given fields into the stored entity and returns the
// updated state. Returns NotFoundError if the id is absent.
func (r *Repository[T]) Update(ctx context.Context, id string, fields database.Document) (*T, error) {
	if err := r.provider.Update(ctx, r.collection, id, fields); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Save replaces the stored entity with the given one, matched by id.
func (r *Repository[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, &database.ValidationError{Reason: "entity cannot be nil"}
	}
	doc, err := r.codec.ToDocument(entity)
	if err != nil {
		return nil, err
	}
	id := doc.ID()
	if id == "" {
		return nil, &database.ValidationError{Field: "id", Reason: "entity id is required"}
	}
	if err := r.provider.Update(ctx, r.collection, id, doc); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes the entity with the given id. Deleting an absent id is
// not an error.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.provider.Delete(ctx, r.collection, id)
}

// Search returns entities whose first given field contains the term.
// Additional fields are accepted for forward compatibility but only the
// first is matched; multi-field search needs provider-side text indexes.
func (r *Repository[T]) Search(ctx context.Context, term string, fields ...string) ([]*T, error) {
	if term == "" || len(fields) == 0 {
		return []*T{}, nil
	}
	return r.FindWhere(ctx, database.Where(fields[0], database.OpContains, term))
}

// Subscribe streams the full matching result set on every relevant change.
// Snapshots that no longer decode are dropped and logged; the subscription
// stays live.
func (r *Repository[T]) Subscribe(ctx context.Context, q database.Query, fn func([]*T)) (database.Subscription, error) {
	return r.provider.Subscribe(ctx, r.collection, q, func(docs []database.Document) {
		entities, err := r.decodeAll(docs)
		if err != nil {
			r.log.Error("dropping undecodable subscription snapshot", "collection", r.collection, "error", err.Error())
			return
		}
		fn(entities)
	})
}

// SubscribeDocument streams the entity with the given id on every change.
// The callback receives nil when the entity is deleted.
func (r *Repository[T]) SubscribeDocument(ctx context.Context, id string, fn func(*T)) (database.Subscription, error) {
	return r.provider.SubscribeDocument(ctx, r.collection, id, func(doc database.Document) {
		if doc == nil {
			fn(nil)
			return
		}
		entity, err := r.codec.FromDocument(doc)
		if err != nil {
			r.log.Error("dropping undecodable document snapshot", "collection", r.collection, "id", id, "error", err.Error())
			return
		}
		fn(entity)
	})
}

func (r *Repository[T]) decodeAll(docs []database.Document) ([]*T, error) {
	entities := make([]*T, 0, len(docs))
	for _, doc := range docs {
		entity, err := r.codec.FromDocument(doc)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
