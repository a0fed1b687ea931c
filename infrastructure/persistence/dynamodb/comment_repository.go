package dynamodb

import (
	"context"
	"time"

	"castfeed-backend/domain/comment"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

type commentRecord struct {
	PK         string             `dynamodbav:"PK"`
	SK         string             `dynamodbav:"SK"`
	GSI1PK     string             `dynamodbav:"GSI1PK"`
	GSI1SK     string             `dynamodbav:"GSI1SK"`
	GSI2PK     string             `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK     string             `dynamodbav:"GSI2SK,omitempty"`
	ID         string             `dynamodbav:"ID"`
	ContentID  string             `dynamodbav:"ContentID"`
	ParentID   string             `dynamodbav:"ParentID,omitempty"`
	AuthorID   string             `dynamodbav:"AuthorID"`
	Message    string             `dynamodbav:"Message"`
	Likes      engagement.Summary `dynamodbav:"Likes"`
	ReplyCount int                `dynamodbav:"ReplyCount"`
	Deleted    bool               `dynamodbav:"Deleted"`
	CreatedAt  time.Time          `dynamodbav:"CreatedAt"`
	UpdatedAt  time.Time          `dynamodbav:"UpdatedAt"`
}

// CommentRepository implements ports.CommentRepository on DynamoDB.
// Comments key by their own id; GSI1 lists a post's top-level thread and
// GSI2 lists the replies under a comment, both in creation order.
type CommentRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewCommentRepository creates a new DynamoDB comment repository
func NewCommentRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Save upserts the comment
func (r *CommentRepository) Save(ctx context.Context, c *comment.Comment) error {
	record := commentRecord{
		PK:         commentPK(c.ID()),
		SK:         "META",
		ID:         c.ID(),
		ContentID:  c.ContentID(),
		ParentID:   c.ParentID(),
		AuthorID:   c.AuthorID(),
		Message:    c.Message(),
		Likes:      c.Likes(),
		ReplyCount: c.ReplyCount(),
		Deleted:    c.IsDeleted(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
	sortKey := c.CreatedAt().UTC().Format(time.RFC3339Nano) + "#" + c.ID()
	if c.IsReply() {
		record.GSI2PK = "REPLIES#" + c.ParentID()
		record.GSI2SK = sortKey
	} else {
		record.GSI1PK = "THREAD#" + c.ContentID()
		record.GSI1SK = sortKey
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal comment", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return pkgerrors.NewTransientError("save comment", err)
	}
	return nil
}

// FindByID returns the comment, including tombstones
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*comment.Comment, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": commentPK(id),
		"SK": "META",
	})
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to marshal key", err)
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, pkgerrors.NewTransientError("get comment", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("comment")
	}

	var record commentRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal comment", err)
	}
	return fromCommentRecord(record), nil
}

// FindByContent pages the top-level comments of a post, tombstones included
func (r *CommentRepository) FindByContent(ctx context.Context, contentID string, page common.PaginationParams) ([]*comment.Comment, int, error) {
	return r.queryThread(ctx, gsi1Name, "GSI1PK", "THREAD#"+contentID, page)
}

// FindReplies pages the replies under a comment
func (r *CommentRepository) FindReplies(ctx context.Context, parentID string, page common.PaginationParams) ([]*comment.Comment, int, error) {
	return r.queryThread(ctx, gsi2Name, "GSI2PK", "REPLIES#"+parentID, page)
}

// Delete removes a comment outright
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": commentPK(id),
		"SK": "META",
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal key", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	if err != nil {
		return pkgerrors.NewTransientError("delete comment", err)
	}
	return nil
}

// CountByContent counts the live comments and replies on a post
func (r *CommentRepository) CountByContent(ctx context.Context, contentID string) (int, error) {
	topLevel, _, err := r.queryThread(ctx, gsi1Name, "GSI1PK", "THREAD#"+contentID, common.PaginationParams{Page: 1, Limit: 1 << 30})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, c := range topLevel {
		if !c.IsDeleted() {
			count++
		}
		replies, _, err := r.queryThread(ctx, gsi2Name, "GSI2PK", "REPLIES#"+c.ID(), common.PaginationParams{Page: 1, Limit: 1 << 30})
		if err != nil {
			return 0, err
		}
		for _, reply := range replies {
			if !reply.IsDeleted() {
				count++
			}
		}
	}
	return count, nil
}

func (r *CommentRepository) queryThread(ctx context.Context, index, keyName, keyValue string, page common.PaginationParams) ([]*comment.Comment, int, error) {
	keyCond := expression.Key(keyName).Equal(expression.Value(keyValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, 0, pkgerrors.NewInternalError("failed to build query", err)
	}

	forward := page.Order == "asc"
	var records []commentRecord
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(index),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(forward),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, 0, pkgerrors.NewTransientError("query comments", err)
		}

		var batch []commentRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &batch); err != nil {
			return nil, 0, pkgerrors.NewInternalError("failed to unmarshal comments", err)
		}
		records = append(records, batch...)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	total := len(records)
	offset := page.Offset()
	if offset >= len(records) {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > len(records) {
		end = len(records)
	}

	out := make([]*comment.Comment, 0, end-offset)
	for _, record := range records[offset:end] {
		out = append(out, fromCommentRecord(record))
	}
	return out, total, nil
}

func fromCommentRecord(record commentRecord) *comment.Comment {
	return comment.Reconstruct(
		record.ID,
		record.ContentID,
		record.ParentID,
		record.AuthorID,
		record.Message,
		record.Likes,
		record.ReplyCount,
		record.Deleted,
		record.CreatedAt,
		record.UpdatedAt,
	)
}
