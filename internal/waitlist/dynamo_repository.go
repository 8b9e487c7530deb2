package waitlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoItem is the table layout. email is the partition key.
type dynamoItem struct {
	Email       string   `dynamodbav:"email"`
	ID          string   `dynamodbav:"id"`
	FullName    string   `dynamodbav:"fullName"`
	CompanyName string   `dynamodbav:"companyName,omitempty"`
	Website     string   `dynamodbav:"website,omitempty"`
	CompanySize string   `dynamodbav:"companySize,omitempty"`
	Role        string   `dynamodbav:"role,omitempty"`
	PainPoints  []string `dynamodbav:"painPoints"`
	CreatedAt   string   `dynamodbav:"createdAt"`
}

var (
	_ Repository = (*DynamoRepository)(nil)
	_ Lister     = (*DynamoRepository)(nil)
)

// DynamoRepository stores waitlist records in a DynamoDB table keyed by email.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDynamoRepository builds a store backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("waitlist: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("waitlist: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{client: client, tableName: tableName, logger: logger}
}

// Insert puts the item on condition that the email is new.
func (r *DynamoRepository) Insert(ctx context.Context, rec *intake.Record) error {
	item, err := attributevalue.MarshalMap(dynamoItem{
		Email:       rec.Email,
		ID:          rec.ID,
		FullName:    rec.FullName,
		CompanyName: rec.CompanyName,
		Website:     rec.Website,
		CompanySize: string(rec.CompanySize),
		Role:        rec.Role,
		PainPoints:  rec.PainPoints.Strings(),
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("waitlist: marshal item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("waitlist: put item: %w", intake.ErrDuplicateEmail)
		}
		return fmt.Errorf("waitlist: put item: %w", err)
	}
	return nil
}

// List scans the table and pages in memory. Intended for small admin views.
func (r *DynamoRepository) List(ctx context.Context, filter ListFilter) ([]*intake.Record, error) {
	var items []dynamoItem
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("waitlist: scan: %w", err)
		}
		var page []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("waitlist: unmarshal scan: %w", err)
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	records := make([]*intake.Record, 0, len(items))
	for _, item := range items {
		rec, err := item.record()
		if err != nil {
			r.logger.Warn("waitlist: skipping unreadable item", "id", item.ID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })

	if filter.Offset >= len(records) {
		return []*intake.Record{}, nil
	}
	records = records[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	return records, nil
}

func (it dynamoItem) record() (*intake.Record, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return nil, err
	}
	labels := make([]intake.PainPoint, len(it.PainPoints))
	for i, p := range it.PainPoints {
		labels[i] = intake.PainPoint(p)
	}
	set, err := intake.NewPainPointSet(labels...)
	if err != nil {
		return nil, err
	}
	return &intake.Record{
		ID:          it.ID,
		FullName:    it.FullName,
		Email:       it.Email,
		CompanyName: it.CompanyName,
		Website:     it.Website,
		CompanySize: intake.CompanySize(it.CompanySize),
		Role:        it.Role,
		PainPoints:  set,
		CreatedAt:   createdAt,
	}, nil
}
