package dynamodb

import (
	"context"
	"encoding/base64"
	"time"

	"castfeed-backend/domain/feed"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

type feedItemRecord struct {
	PK         string           `dynamodbav:"PK"`
	SK         string           `dynamodbav:"SK"`
	GSI1PK     string           `dynamodbav:"GSI1PK"`
	GSI1SK     string           `dynamodbav:"GSI1SK"`
	GSI2PK     string           `dynamodbav:"GSI2PK"`
	GSI2SK     string           `dynamodbav:"GSI2SK"`
	ID         string           `dynamodbav:"ID"`
	ViewerID   string           `dynamodbav:"ViewerID"`
	View       feed.ContentView `dynamodbav:"View"`
	Descriptor feed.Descriptor  `dynamodbav:"Descriptor"`
	Seen       bool             `dynamodbav:"Seen"`
	Called     bool             `dynamodbav:"Called"`
	CreatedAt  time.Time        `dynamodbav:"CreatedAt"`
	UpdatedAt  time.Time        `dynamodbav:"UpdatedAt"`
}

// FeedRepository implements ports.FeedRepository on DynamoDB. Timelines
// live one partition per viewer with creation-ordered sort keys, so a page
// is a single Query and the cursor is the exclusive start key.
type FeedRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewFeedRepository creates a new DynamoDB feed repository
func NewFeedRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *FeedRepository {
	return &FeedRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func feedItemSK(createdAt time.Time, id string) string {
	return "ITEM#" + createdAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

// Save upserts a feed item
func (r *FeedRepository) Save(ctx context.Context, item *feed.Item) error {
	d := item.Descriptor()
	record := feedItemRecord{
		PK:         feedPK(item.ViewerID()),
		SK:         feedItemSK(item.CreatedAt(), item.ID()),
		GSI1PK:     "FEEDGROUP#" + item.ViewerID() + "#" + d.Type + "#" + d.GroupKey,
		GSI1SK:     "ITEM#" + item.ID(),
		GSI2PK:     "FEEDCONTENT#" + item.View().ContentID,
		GSI2SK:     "ITEM#" + item.ViewerID() + "#" + item.ID(),
		ID:         item.ID(),
		ViewerID:   item.ViewerID(),
		View:       item.View(),
		Descriptor: d,
		Seen:       item.Seen(),
		Called:     item.Called(),
		CreatedAt:  item.CreatedAt(),
		UpdatedAt:  item.UpdatedAt(),
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal feed item", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewTransientError("save feed item", err)
	}
	return nil
}

// FindByID returns one of the viewer's items
func (r *FeedRepository) FindByID(ctx context.Context, viewerID, itemID string) (*feed.Item, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(feedPK(viewerID))).
		And(expression.Key("SK").BeginsWith("ITEM#"))
	filter := expression.Name("ID").Equal(expression.Value(itemID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query", err)
	}

	records, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNotFoundError("feed item")
	}
	return fromFeedItemRecord(records[0]), nil
}

// FindByGroup returns the viewer's item for an aggregator group
func (r *FeedRepository) FindByGroup(ctx context.Context, viewerID, aggregatorType, groupKey string) (*feed.Item, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("FEEDGROUP#" + viewerID + "#" + aggregatorType + "#" + groupKey))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query", err)
	}

	records, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNotFoundError("feed item")
	}
	return fromFeedItemRecord(records[0]), nil
}

// FindTimeline pages the viewer's items newest first. The cursor is the
// opaque base64 sort key of the last delivered item.
func (r *FeedRepository) FindTimeline(ctx context.Context, viewerID, cursor string, limit int) ([]*feed.Item, string, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(feedPK(viewerID))).
		And(expression.Key("SK").BeginsWith("ITEM#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, "", pkgerrors.NewInternalError("failed to build query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	}
	if cursor != "" {
		sk, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: feedPK(viewerID)},
			"SK": &types.AttributeValueMemberS{Value: sk},
		}
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.NewTransientError("query timeline", err)
	}

	var records []feedItemRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, "", pkgerrors.NewInternalError("failed to unmarshal feed items", err)
	}

	items := make([]*feed.Item, 0, len(records))
	for _, record := range records {
		items = append(items, fromFeedItemRecord(record))
	}

	next := ""
	if out.LastEvaluatedKey != nil && len(records) > 0 {
		next = encodeCursor(records[len(records)-1].SK)
	}
	return items, next, nil
}

// DeleteByContent removes every item rendering the given content, across
// all viewers.
func (r *FeedRepository) DeleteByContent(ctx context.Context, contentID string) error {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value("FEEDCONTENT#" + contentID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build query", err)
	}

	records, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi2Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return err
	}

	// BatchWriteItem caps at 25 delete requests per call
	const batchSize = 25
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}

		requests := make([]types.WriteRequest, 0, end-i)
		for _, record := range records[i:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: record.PK},
						"SK": &types.AttributeValueMemberS{Value: record.SK},
					},
				},
			})
		}

		_, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.tableName: requests,
			},
		})
		if err != nil {
			return pkgerrors.NewTransientError("delete feed items", err)
		}
	}
	return nil
}

func (r *FeedRepository) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]feedItemRecord, error) {
	var records []feedItemRecord
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewTransientError("query feed items", err)
		}

		var batch []feedItemRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &batch); err != nil {
			return nil, pkgerrors.NewInternalError("failed to unmarshal feed items", err)
		}
		records = append(records, batch...)

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func fromFeedItemRecord(record feedItemRecord) *feed.Item {
	return feed.ReconstructItem(
		record.ID,
		record.ViewerID,
		record.View,
		record.Descriptor,
		record.Seen,
		record.Called,
		record.CreatedAt,
		record.UpdatedAt,
	)
}

func encodeCursor(sk string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(sk))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", pkgerrors.NewValidationError("invalid cursor")
	}
	return string(raw), nil
}
