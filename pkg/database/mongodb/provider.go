// Package mongodb implements the storage contract on MongoDB. Documents are
// stored with the contract id as Mongo's _id; subscriptions ride on change
// streams (requires a replica set deployment).
package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/metrics"
)

// Config holds MongoDB provider configuration.
type Config struct {
	URL              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// Provider implements the storage contract over a mongo-driver client.
type Provider struct {
	client   *mongo.Client
	database string
	timeout  time.Duration
	recorder *metrics.QueryRecorder
	log      logger.Logger

	mu            sync.RWMutex
	connected     bool
	lastConnected time.Time
}

// Cosa fa: inizializza il provider MongoDB e verifica connettività via ping.
// Cosa NON fa: non crea indici o collezioni automaticamente.
// Esempio minimo: p, err := mongodb.New(cfg, rec, log)
func New(cfg Config, rec *metrics.QueryRecorder, log logger.Logger) (*Provider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mongodb URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &database.UnavailableError{Provider: "mongodb", Err: err}
	}

	log.Info("MongoDB connection established", "database", cfg.Database)
	return &Provider{
		client:        client,
		database:      cfg.Database,
		timeout:       cfg.OperationTimeout,
		recorder:      rec,
		log:           log,
		connected:     true,
		lastConnected: time.Now(),
	}, nil
}

// Name returns the engine identifier.
func (p *Provider) Name() string { return "mongodb" }

func (p *Provider) collection(name string) *mongo.Collection {
	return p.client.Database(p.database).Collection(name)
}

func (p *Provider) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// Create inserts a document, generating an id when none is given.
func (p *Provider) Create(ctx context.Context, collection string, doc database.Document, id string) (database.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}

	stored := doc.Clone()
	if stored == nil {
		stored = database.Document{}
	}
	stored["id"] = id

	body := bson.M{"_id": id}
	for k, v := range stored {
		if k == "id" {
			continue
		}
		body[k] = v
	}

	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	if _, err := p.collection(collection).InsertOne(opCtx, body); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &database.ConflictError{Collection: collection, ID: id}
		}
		return nil, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return stored, nil
}

// Read fetches a document by id. Absent documents yield (nil, nil).
func (p *Provider) Read(ctx context.Context, collection, id string) (database.Document, error) {
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	out := bson.M{}
	err := p.collection(collection).FindOne(opCtx, bson.M{"_id": id}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}
	return fromBSON(out), nil
}

// Update merges patch into an existing document via $set.
func (p *Provider) Update(ctx context.Context, collection, id string, patch database.Document) error {
	set := bson.M{}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		set[k] = v
	}

	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	res, err := p.collection(collection).UpdateOne(opCtx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return &database.NotFoundError{Collection: collection, ID: id}
	}
	return nil
}

// Delete removes a document. Deleting a missing id succeeds.
func (p *Provider) Delete(ctx context.Context, collection, id string) error {
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	if _, err := p.collection(collection).DeleteOne(opCtx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query evaluates q against the collection.
func (p *Provider) Query(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	filter, err := toFilter(q.Where)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	cursor, err := p.collection(collection).Find(opCtx, filter, findOptions(q))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	raw := []bson.M{}
	if err := cursor.All(opCtx, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s query results: %w", collection, err)
	}

	docs := make([]database.Document, len(raw))
	for i, m := range raw {
		docs[i] = fromBSON(m)
	}
	if p.recorder != nil {
		p.recorder.ObserveQuery(collection, q.FilterFields(), time.Since(start))
	}
	return docs, nil
}

// Count returns the number of documents matching the conditions.
func (p *Provider) Count(ctx context.Context, collection string, where []database.Condition) (int64, error) {
	q := database.Query{Where: where}
	if err := q.Validate(); err != nil {
		return 0, err
	}
	filter, err := toFilter(where)
	if err != nil {
		return 0, err
	}

	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	n, err := p.collection(collection).CountDocuments(opCtx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

// Batch applies operations as an ordered bulk write per collection, so a
// queued create-then-update of the same id lands in submission order.
// MongoDB bulk writes are not transactional; per-operation failures are
// collected into a *BatchError.
func (p *Provider) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if len(ops) == 0 {
		return nil
	}

	// Preserve submission order within each collection; operations are
	// grouped because a bulk write targets one collection.
	type indexed struct {
		index int
		model mongo.WriteModel
	}
	groups := make(map[string][]indexed)
	var failed []*database.OperationError

	for i, op := range ops {
		var model mongo.WriteModel
		switch op.Type {
		case database.BatchCreate:
			id := op.ID
			if id == "" {
				id = uuid.NewString()
			}
			body := bson.M{"_id": id}
			for k, v := range op.Data {
				if k == "id" {
					continue
				}
				body[k] = v
			}
			model = mongo.NewInsertOneModel().SetDocument(body)
		case database.BatchUpdate:
			set := bson.M{}
			for k, v := range op.Data {
				if k == "id" {
					continue
				}
				set[k] = v
			}
			model = mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": op.ID}).
				SetUpdate(bson.M{"$set": set})
		case database.BatchDelete:
			model = mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": op.ID})
		default:
			failed = append(failed, &database.OperationError{
				Index:      i,
				Collection: op.Collection,
				ID:         op.ID,
				Err:        &database.ValidationError{Reason: "unknown batch operation type " + string(op.Type)},
			})
			continue
		}
		groups[op.Collection] = append(groups[op.Collection], indexed{index: i, model: model})
	}

	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	var applied []int
	for collection, group := range groups {
		models := make([]mongo.WriteModel, len(group))
		for i, g := range group {
			models[i] = g.model
		}
		_, err := p.collection(collection).BulkWrite(opCtx, models, options.BulkWrite().SetOrdered(true))
		if err != nil {
			if bwe, ok := err.(mongo.BulkWriteException); ok && len(bwe.WriteErrors) > 0 {
				writeErrs := make(map[int]error, len(bwe.WriteErrors))
				for _, we := range bwe.WriteErrors {
					writeErrs[we.Index] = fmt.Errorf("%s", we.Message)
				}
				okPos, badPos := orderedOutcome(len(group), writeErrs, collection)
				for _, i := range okPos {
					applied = append(applied, group[i].index)
				}
				for _, b := range badPos {
					g := group[b.pos]
					failed = append(failed, &database.OperationError{
						Index:      g.index,
						Collection: collection,
						ID:         ops[g.index].ID,
						Err:        b.err,
					})
				}
				continue
			}
			for _, g := range group {
				failed = append(failed, &database.OperationError{
					Index:      g.index,
					Collection: collection,
					ID:         ops[g.index].ID,
					Err:        err,
				})
			}
			continue
		}
		for _, g := range group {
			applied = append(applied, g.index)
		}
	}

	if len(failed) > 0 {
		return &database.BatchError{Applied: applied, Failed: failed}
	}
	return nil
}

type bulkFailure struct {
	pos int
	err error
}

// orderedOutcome classifies the positions of an ordered bulk write group
// after a failure. An ordered bulk stops at the first write error: positions
// before it applied, the failing position carries its error, and positions
// after it were never attempted.
func orderedOutcome(n int, writeErrors map[int]error, collection string) ([]int, []bulkFailure) {
	stop := n
	for i := range writeErrors {
		if i < stop {
			stop = i
		}
	}
	applied := make([]int, 0, stop)
	for i := 0; i < stop; i++ {
		applied = append(applied, i)
	}
	failed := make([]bulkFailure, 0, n-stop)
	for i := stop; i < n; i++ {
		werr := writeErrors[i]
		if werr == nil {
			werr = fmt.Errorf("not attempted: an earlier operation on %s failed", collection)
		}
		failed = append(failed, bulkFailure{pos: i, err: werr})
	}
	return applied, failed
}

// Connect is idempotent: the client pool is established in New, so a connect
// on a live provider only verifies reachability.
func (p *Provider) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return nil
	}
	if err := p.client.Ping(ctx, readpref.Primary()); err != nil {
		return &database.UnavailableError{Provider: "mongodb", Err: err}
	}
	p.connected = true
	p.lastConnected = time.Now()
	return nil
}

// Disconnect tears down the client pool.
func (p *Provider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return nil
	}
	p.connected = false
	if err := p.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongodb: %w", err)
	}
	return nil
}

// Connected reports the connection flag.
func (p *Provider) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// Status pings the deployment and reports connection state with latency.
func (p *Provider) Status(ctx context.Context) database.ConnectionStatus {
	p.mu.RLock()
	connected := p.connected
	last := p.lastConnected
	p.mu.RUnlock()

	status := database.ConnectionStatus{
		Provider:      p.Name(),
		Connected:     connected,
		LastConnected: last,
	}
	if !connected {
		return status
	}

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.client.Ping(pingCtx, readpref.Primary()); err != nil {
		status.Connected = false
		return status
	}
	status.Latency = time.Since(start)
	return status
}

// QueryMetrics returns the recorded performance snapshot for a collection.
func (p *Provider) QueryMetrics(ctx context.Context, collection string) (database.QueryMetrics, error) {
	if err := ctx.Err(); err != nil {
		return database.QueryMetrics{}, err
	}
	if p.recorder == nil {
		return database.QueryMetrics{Collection: collection, FieldFrequency: map[string]int{}}, nil
	}
	return database.MetricsFromSnapshot(p.recorder.Snapshot(collection)), nil
}

// Optimize asks the server to refresh collection statistics. Schema and
// index changes are out of scope; this never creates indexes.
func (p *Provider) Optimize(ctx context.Context, collection string) error {
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	res := p.client.Database(p.database).RunCommand(opCtx, bson.D{
		{Key: "collStats", Value: collection},
	})
	if err := res.Err(); err != nil {
		return fmt.Errorf("collStats for %s failed: %w", collection, err)
	}
	return nil
}
