package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DefaultPollInterval is how often subscriptions re-query DynamoDB when no
// interval is configured.
const DefaultPollInterval = 2 * time.Second

// DynamoStore implements Store over DynamoDB. Field-equality queries run
// against a GSI named "<field>-index". Subscriptions are poll-and-compare:
// DynamoDB offers no push query primitive, so each subscription re-runs its
// query on an interval and delivers only when the result set changed.
type DynamoStore struct {
	Client       *dynamodb.Client
	Schema       Schema
	PollInterval time.Duration
}

// InitializeDynamoDBClient initializes the DynamoDB client
func InitializeDynamoDBClient() *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

// NewDynamoStore wraps a DynamoDB client as a Store.
func NewDynamoStore(client *dynamodb.Client, schema Schema, pollInterval time.Duration) *DynamoStore {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &DynamoStore{Client: client, Schema: schema, PollInterval: pollInterval}
}

func (ds *DynamoStore) keyAttr(collection, key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		ds.Schema.KeyField(collection): &types.AttributeValueMemberS{Value: key},
	}
}

func (ds *DynamoStore) Get(ctx context.Context, collection, key string, out interface{}) error {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(collection),
		Key:       ds.keyAttr(collection, key),
	})
	if err != nil {
		return fmt.Errorf("failed to get item from table '%s': %w", collection, err)
	}
	if output.Item == nil {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(output.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from table '%s': %w", collection, err)
	}
	return nil
}

func (ds *DynamoStore) Query(ctx context.Context, collection string, q Query, out interface{}) error {
	snap, err := ds.querySnapshot(ctx, collection, q)
	if err != nil {
		return err
	}
	return snap.Decode(out)
}

func (ds *DynamoStore) Create(ctx context.Context, collection string, item interface{}) (string, error) {
	key := uuid.New().String()
	if err := ds.putItem(ctx, collection, key, item, false); err != nil {
		return "", err
	}
	return key, nil
}

func (ds *DynamoStore) CreateIfAbsent(ctx context.Context, collection, key string, item interface{}) error {
	return ds.putItem(ctx, collection, key, item, true)
}

func (ds *DynamoStore) Set(ctx context.Context, collection, key string, item interface{}) error {
	return ds.putItem(ctx, collection, key, item, false)
}

func (ds *DynamoStore) putItem(ctx context.Context, collection, key string, item interface{}, ifAbsent bool) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		log.Printf("Failed to marshal item: %v\n", err)
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	keyField := ds.Schema.KeyField(collection)
	marshaledItem[keyField] = &types.AttributeValueMemberS{Value: key}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(collection),
		Item:      marshaledItem,
	}
	if ifAbsent {
		input.ConditionExpression = aws.String("attribute_not_exists(#k)")
		input.ExpressionAttributeNames = map[string]string{"#k": keyField}
	}

	_, err = ds.Client.PutItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if ifAbsent && errors.As(err, &condErr) {
			return ErrConflict
		}
		log.Printf("❌ Failed to insert item: %v\n", err)
		return fmt.Errorf("failed to put item in table '%s': %w", collection, err)
	}
	return nil
}

// Update compiles all ops into a single UpdateExpression so the whole
// mutation is one atomic request.
func (ds *DynamoStore) Update(ctx context.Context, collection, key string, ops []FieldOp) error {
	if len(ops) == 0 {
		return errors.New("update failed: no field ops")
	}

	var setClauses, removeClauses []string
	names := map[string]string{"#key": ds.Schema.KeyField(collection)}
	values := map[string]types.AttributeValue{}

	for i, op := range ops {
		fieldName := fmt.Sprintf("#f%d", i)
		names[fieldName] = op.Field
		path := fieldName
		if op.EntryKey != "" {
			entryName := fmt.Sprintf("#k%d", i)
			names[entryName] = op.EntryKey
			path = fieldName + "." + entryName
		}

		switch op.Kind {
		case OpSet, OpSetMapEntry:
			value, err := attributevalue.Marshal(op.Value)
			if err != nil {
				return fmt.Errorf("failed to marshal value for field '%s': %w", op.Field, err)
			}
			placeholder := fmt.Sprintf(":v%d", i)
			values[placeholder] = value
			setClauses = append(setClauses, fmt.Sprintf("%s = %s", path, placeholder))
		case OpRemoveMapEntry:
			removeClauses = append(removeClauses, path)
		case OpListAppend:
			value, err := attributevalue.Marshal([]interface{}{op.Value})
			if err != nil {
				return fmt.Errorf("failed to marshal value for field '%s': %w", op.Field, err)
			}
			placeholder := fmt.Sprintf(":v%d", i)
			empty := fmt.Sprintf(":e%d", i)
			values[placeholder] = value
			values[empty] = &types.AttributeValueMemberL{Value: []types.AttributeValue{}}
			setClauses = append(setClauses,
				fmt.Sprintf("%s = list_append(if_not_exists(%s, %s), %s)", path, path, empty, placeholder))
		default:
			return fmt.Errorf("unknown field op kind: %s", op.Kind)
		}
	}

	updateExpression := ""
	if len(setClauses) > 0 {
		updateExpression = "SET " + stringJoin(setClauses, ", ")
	}
	if len(removeClauses) > 0 {
		if updateExpression != "" {
			updateExpression += " "
		}
		updateExpression += "REMOVE " + stringJoin(removeClauses, ", ")
	}

	var expAttrValues map[string]types.AttributeValue
	if len(values) > 0 {
		expAttrValues = values
	}

	_, err := ds.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(collection),
		Key:       ds.keyAttr(collection, key),
		// UpdateItem upserts by default; requiring the key keeps "update a
		// missing document" an ErrNotFound instead of a phantom create.
		ConditionExpression:       aws.String("attribute_exists(#key)"),
		UpdateExpression:          aws.String(updateExpression),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: expAttrValues,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		log.Printf("❌ Failed to update item in table '%s': %v", collection, err)
		return fmt.Errorf("failed to update item in table '%s': %w", collection, err)
	}
	return nil
}

func (ds *DynamoStore) Delete(ctx context.Context, collection, key string) error {
	_, err := ds.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(collection),
		Key:       ds.keyAttr(collection, key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table '%s': %w", collection, err)
	}
	return nil
}

// Subscribe polls the query on the configured interval and delivers the full
// result set whenever it differs from the last delivered one.
func (ds *DynamoStore) Subscribe(collection string, q Query, fn SnapshotFunc) (CancelFunc, error) {
	ctx, cancelCtx := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(ds.PollInterval)
		defer ticker.Stop()

		var last Snapshot
		delivered := false
		poll := func() {
			snap, err := ds.querySnapshot(ctx, collection, q)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("❌ Subscription poll failed for '%s': %v", collection, err)
				fn(nil, err)
				// Force redelivery once the query succeeds again.
				delivered = false
				last = nil
				return
			}
			if delivered && reflect.DeepEqual(snap, last) {
				return
			}
			last = snap
			delivered = true
			fn(snap, nil)
		}

		poll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(cancelCtx)
	}
	return cancel, nil
}

func (ds *DynamoStore) querySnapshot(ctx context.Context, collection string, q Query) (Snapshot, error) {
	var items []map[string]types.AttributeValue

	switch {
	case q.Key != "":
		output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(collection),
			Key:       ds.keyAttr(collection, q.Key),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get item from table '%s': %w", collection, err)
		}
		if output.Item != nil {
			items = append(items, output.Item)
		}
	case q.Field != "":
		equals, err := attributevalue.Marshal(q.Equals)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal query value: %w", err)
		}
		if _, isBool := q.Equals.(bool); isBool {
			// BOOL cannot be a GSI partition key; filter a scan instead.
			output, err := ds.Client.Scan(ctx, &dynamodb.ScanInput{
				TableName:                 aws.String(collection),
				FilterExpression:          aws.String("#f = :v"),
				ExpressionAttributeNames:  map[string]string{"#f": q.Field},
				ExpressionAttributeValues: map[string]types.AttributeValue{":v": equals},
			})
			if err != nil {
				return nil, fmt.Errorf("failed to scan table '%s': %w", collection, err)
			}
			items = output.Items
			break
		}
		indexName := q.Field + "-index"
		output, err := ds.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(collection),
			IndexName:                 aws.String(indexName),
			KeyConditionExpression:    aws.String("#f = :v"),
			ExpressionAttributeNames:  map[string]string{"#f": q.Field},
			ExpressionAttributeValues: map[string]types.AttributeValue{":v": equals},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query GSI '%s': %w", indexName, err)
		}
		items = output.Items
	default:
		output, err := ds.Client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(collection)})
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", collection, err)
		}
		items = output.Items
	}

	snap := make(Snapshot, 0, len(items))
	for _, item := range items {
		var doc map[string]interface{}
		if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item from table '%s': %w", collection, err)
		}
		snap = append(snap, Document(doc))
	}

	// Sort client-side; GSI order is not guaranteed to match OrderBy.
	if q.OrderBy != "" {
		sort.SliceStable(snap, func(i, j int) bool {
			a := fmt.Sprintf("%v", snap[i][q.OrderBy])
			b := fmt.Sprintf("%v", snap[j][q.OrderBy])
			if q.Descending {
				return a > b
			}
			return a < b
		})
	}
	if q.Limit > 0 && len(snap) > q.Limit {
		snap = snap[:q.Limit]
	}
	return snap, nil
}

// Utility function to join strings
func stringJoin(parts []string, delimiter string) string {
	result := ""
	for i, part := range parts {
		if i > 0 {
			result += delimiter
		}
		result += part
	}
	return result
}
