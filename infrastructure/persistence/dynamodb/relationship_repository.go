package dynamodb

import (
	"context"
	"time"

	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

type followRecord struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	UserID    string    `dynamodbav:"UserID"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
}

// RelationshipRepository implements ports.RelationshipRepository on
// DynamoDB. Each follow writes two items, one per traversal direction, so
// both follower and following listings are single-partition queries.
type RelationshipRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewRelationshipRepository creates a new DynamoDB relationship repository
func NewRelationshipRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *RelationshipRepository {
	return &RelationshipRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Follow adds a follow edge. Following twice is a no-op overwrite.
func (r *RelationshipRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	now := time.Now()
	records := []followRecord{
		{PK: followersPK(followeeID), SK: "USER#" + followerID, UserID: followerID, CreatedAt: now},
		{PK: followingPK(followerID), SK: "USER#" + followeeID, UserID: followeeID, CreatedAt: now},
	}

	for _, record := range records {
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return pkgerrors.NewInternalError("failed to marshal follow edge", err)
		}
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      item,
		})
		if err != nil {
			return pkgerrors.NewTransientError("save follow edge", err)
		}
	}
	return nil
}

// Unfollow removes a follow edge. Removing an absent edge is a no-op.
func (r *RelationshipRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	keys := []map[string]string{
		{"PK": followersPK(followeeID), "SK": "USER#" + followerID},
		{"PK": followingPK(followerID), "SK": "USER#" + followeeID},
	}

	for _, k := range keys {
		key, err := attributevalue.MarshalMap(k)
		if err != nil {
			return pkgerrors.NewInternalError("failed to marshal key", err)
		}
		_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       key,
		})
		if err != nil {
			return pkgerrors.NewTransientError("delete follow edge", err)
		}
	}
	return nil
}

// FollowersOf returns the ids following the given user
func (r *RelationshipRepository) FollowersOf(ctx context.Context, userID string) ([]string, error) {
	return r.queryEdges(ctx, followersPK(userID))
}

// FollowingOf returns the ids the given user follows
func (r *RelationshipRepository) FollowingOf(ctx context.Context, userID string) ([]string, error) {
	return r.queryEdges(ctx, followingPK(userID))
}

func (r *RelationshipRepository) queryEdges(ctx context.Context, pk string) ([]string, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pk))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query", err)
	}

	var ids []string
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewTransientError("query follow edges", err)
		}

		var records []followRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
			return nil, pkgerrors.NewInternalError("failed to unmarshal follow edges", err)
		}
		for _, record := range records {
			ids = append(ids, record.UserID)
		}

		if out.LastEvaluatedKey == nil {
			return ids, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}
