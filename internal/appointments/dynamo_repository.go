package appointments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/wolfman30/barbershop-concierge/internal/extract"
)

// createdAtLayout is fixed-width so items sort lexically by time.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoItem is the persisted shape of a record.
type dynamoItem struct {
	ID        string `dynamodbav:"appointmentId"`
	CreatedAt string `dynamodbav:"createdAt"`
	extract.Fields
}

// DynamoRepository stores records as items keyed by a random id.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	now       func() time.Time
}

var _ Repository = (*DynamoRepository)(nil)

// NewDynamoRepository builds a store backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string) *DynamoRepository {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
	}
	return &DynamoRepository{
		client:    client,
		tableName: tableName,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Append writes a new item. The key is fresh per call so writes never collide.
func (r *DynamoRepository) Append(ctx context.Context, record extract.Fields) error {
	ctx, span := tracer.Start(ctx, "appointments.dynamodb.append")
	defer span.End()

	item, err := attributevalue.MarshalMap(dynamoItem{
		ID:        uuid.NewString(),
		CreatedAt: r.now().UTC().Format(createdAtLayout),
		Fields:    record,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: marshal item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: dynamodb put: %w", err)
	}
	return nil
}

// List scans the table and orders items by capture time.
func (r *DynamoRepository) List(ctx context.Context) ([]extract.Fields, error) {
	ctx, span := tracer.Start(ctx, "appointments.dynamodb.list")
	defer span.End()

	var items []dynamoItem
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("appointments: dynamodb scan: %w", err)
		}
		var page []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("appointments: unmarshal items: %w", err)
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt == items[j].CreatedAt {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt < items[j].CreatedAt
	})

	records := make([]extract.Fields, 0, len(items))
	for _, item := range items {
		records = append(records, item.Fields)
	}
	return records, nil
}
