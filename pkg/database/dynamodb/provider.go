// Package dynamodb implements the storage contract on AWS DynamoDB. Each
// collection maps to a table (optionally prefixed); the partition key is the
// string attribute "id". Real-time subscriptions are not supported by this
// engine and return ErrNotSupported.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/metrics"
)

// Config holds DynamoDB provider configuration.
type Config struct {
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	SessionToken     string
	TablePrefix      string
	OperationTimeout time.Duration
}

// Provider implements the storage contract over the AWS SDK v2 client.
type Provider struct {
	client   *awsdynamodb.Client
	prefix   string
	timeout  time.Duration
	recorder *metrics.QueryRecorder
	log      logger.Logger

	mu            sync.RWMutex
	connected     bool
	lastConnected time.Time
}

// Cosa fa: costruisce il provider DynamoDB (AWS SDK v2) con supporto endpoint custom.
// Cosa NON fa: non crea tabelle o throughput policy.
// Esempio minimo: p, err := dynamodb.New(cfg, rec, log)
func New(cfg Config, rec *metrics.QueryRecorder, log logger.Logger) (*Provider, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("aws region is required")
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	var opts []func(*awsdynamodb.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *awsdynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	p := &Provider{
		client:        awsdynamodb.NewFromConfig(awsCfg, opts...),
		prefix:        cfg.TablePrefix,
		timeout:       cfg.OperationTimeout,
		recorder:      rec,
		log:           log,
		connected:     true,
		lastConnected: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OperationTimeout)
	defer cancel()
	if err := p.ping(ctx); err != nil {
		return nil, &database.UnavailableError{Provider: "dynamodb", Err: err}
	}

	log.Info("DynamoDB provider initialized", "region", cfg.Region, "endpoint", cfg.Endpoint)
	return p, nil
}

// Name returns the engine identifier.
func (p *Provider) Name() string { return "dynamodb" }

func (p *Provider) table(collection string) *string {
	return aws.String(p.prefix + collection)
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

func (p *Provider) ping(ctx context.Context) error {
	_, err := p.client.ListTables(ctx, &awsdynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// Create inserts a document, generating an id when none is given. A
// conditional put guards caller-controlled ids against overwrites.
func (p *Provider) Create(ctx context.Context, collection string, doc database.Document, id string) (database.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	stored := doc.Clone()
	if stored == nil {
		stored = database.Document{}
	}
	stored["id"] = id

	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	_, err := p.client.PutItem(opCtx, &awsdynamodb.PutItemInput{
		TableName:           p.table(collection),
		Item:                toItem(stored),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, &database.ConflictError{Collection: collection, ID: id}
		}
		return nil, fmt.Errorf("failed to put item into %s: %w", collection, err)
	}
	return stored, nil
}

// Read fetches a document by id. Absent documents yield (nil, nil).
func (p *Provider) Read(ctx context.Context, collection, id string) (database.Document, error) {
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	out, err := p.client.GetItem(opCtx, &awsdynamodb.GetItemInput{
		TableName: p.table(collection),
		Key:       key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s/%s: %w", collection, id, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return fromItem(out.Item), nil
}

// Update merges patch into an existing item with a conditional update
// expression; a missing id fails the condition and maps to NotFoundError.
func (p *Provider) Update(ctx context.Context, collection, id string, patch database.Document) error {
	expr, names, values := updateExpression(patch)
	if expr == "" {
		// Empty patch: still verify existence for contract parity.
		doc, err := p.Read(ctx, collection, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return &database.NotFoundError{Collection: collection, ID: id}
		}
		return nil
	}

	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	_, err := p.client.UpdateItem(opCtx, &awsdynamodb.UpdateItemInput{
		TableName:                 p.table(collection),
		Key:                       key(id),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return &database.NotFoundError{Collection: collection, ID: id}
		}
		return fmt.Errorf("failed to update item %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes an item. Deleting a missing id succeeds.
func (p *Provider) Delete(ctx context.Context, collection, id string) error {
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	_, err := p.client.DeleteItem(opCtx, &awsdynamodb.DeleteItemInput{
		TableName: p.table(collection),
		Key:       key(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query scans the table with a pushed-down filter expression, then applies
// ordering, pagination, and projection client-side: a Scan cannot order, and
// ordering before offset/limit is required by the contract.
func (p *Provider) Query(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	expr, names, values, err := filterExpression(q.Where)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	input := &awsdynamodb.ScanInput{TableName: p.table(collection)}
	if expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	docs := make([]database.Document, 0)
	for {
		out, scanErr := p.client.Scan(opCtx, input)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, scanErr)
		}
		for _, item := range out.Items {
			docs = append(docs, fromItem(item))
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	// Filtering already happened server-side; keep only ordering,
	// pagination, and projection for the client-side pass.
	docs = database.ApplyQuery(docs, database.Query{
		OrderBy: q.OrderBy,
		Limit:   q.Limit,
		Offset:  q.Offset,
		Select:  q.Select,
	})

	if p.recorder != nil {
		p.recorder.ObserveQuery(collection, q.FilterFields(), time.Since(start))
	}
	return docs, nil
}

// Count scans with a filter expression in COUNT mode.
func (p *Provider) Count(ctx context.Context, collection string, where []database.Condition) (int64, error) {
	q := database.Query{Where: where}
	if err := q.Validate(); err != nil {
		return 0, err
	}
	expr, names, values, err := filterExpression(where)
	if err != nil {
		return 0, err
	}

	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	input := &awsdynamodb.ScanInput{
		TableName: p.table(collection),
		Select:    types.SelectCount,
	}
	if expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var total int64
	for {
		out, scanErr := p.client.Scan(opCtx, input)
		if scanErr != nil {
			return 0, fmt.Errorf("failed to count %s: %w", collection, scanErr)
		}
		total += int64(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return total, nil
}

// Batch applies operations sequentially. DynamoDB offers no cross-item
// atomicity for this mix of conditional puts, updates, and deletes, so the
// engine declares best-effort semantics and reports per-operation failures.
func (p *Provider) Batch(ctx context.Context, ops []database.BatchOperation) error {
	var (
		applied []int
		failed  []*database.OperationError
	)
	for i, op := range ops {
		var err error
		switch op.Type {
		case database.BatchCreate:
			_, err = p.Create(ctx, op.Collection, op.Data, op.ID)
		case database.BatchUpdate:
			err = p.Update(ctx, op.Collection, op.ID, op.Data)
		case database.BatchDelete:
			err = p.Delete(ctx, op.Collection, op.ID)
		default:
			err = &database.ValidationError{Reason: "unknown batch operation type " + string(op.Type)}
		}
		if err != nil {
			failed = append(failed, &database.OperationError{
				Index:      i,
				Collection: op.Collection,
				ID:         op.ID,
				Err:        err,
			})
			continue
		}
		applied = append(applied, i)
	}
	if len(failed) > 0 {
		return &database.BatchError{Applied: applied, Failed: failed}
	}
	return nil
}

// Subscribe is not supported: DynamoDB has no change-push mechanism in this
// layer's scope (Streams require separate consumer infrastructure).
func (p *Provider) Subscribe(ctx context.Context, collection string, q database.Query, fn func([]database.Document)) (database.Subscription, error) {
	return nil, fmt.Errorf("dynamodb subscriptions: %w", database.ErrNotSupported)
}

// SubscribeDocument is not supported; see Subscribe.
func (p *Provider) SubscribeDocument(ctx context.Context, collection, id string, fn func(database.Document)) (database.Subscription, error) {
	return nil, fmt.Errorf("dynamodb subscriptions: %w", database.ErrNotSupported)
}

// Connect is idempotent; on a disconnected provider it verifies reachability.
func (p *Provider) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return nil
	}
	if err := p.ping(ctx); err != nil {
		return &database.UnavailableError{Provider: "dynamodb", Err: err}
	}
	p.connected = true
	p.lastConnected = time.Now()
	return nil
}

// Disconnect marks the provider disconnected. The SDK client holds no
// persistent connection to tear down.
func (p *Provider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	return nil
}

// Connected reports the connection flag.
func (p *Provider) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// Status pings the service and reports connection state with latency.
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
	if err := p.ping(pingCtx); err != nil {
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

// Optimize verifies the table exists and is active. Index management is out
// of scope for this layer.
func (p *Provider) Optimize(ctx context.Context, collection string) error {
	opCtx, cancel := p.withOperationTimeout(ctx)
	defer cancel()

	_, err := p.client.DescribeTable(opCtx, &awsdynamodb.DescribeTableInput{
		TableName: p.table(collection),
	})
	if err != nil {
		return fmt.Errorf("describe table %s failed: %w", collection, err)
	}
	return nil
}
