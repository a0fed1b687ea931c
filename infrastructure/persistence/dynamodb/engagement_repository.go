package dynamodb

import (
	"context"
	"errors"
	"time"

	"castfeed-backend/domain/engagement"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

type engagementRecord struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	GSI1PK    string    `dynamodbav:"GSI1PK"`
	GSI1SK    string    `dynamodbav:"GSI1SK"`
	ID        string    `dynamodbav:"ID"`
	UserID    string    `dynamodbav:"UserID"`
	TargetID  string    `dynamodbav:"TargetID"`
	Kind      string    `dynamodbav:"Kind"`
	RefID     string    `dynamodbav:"RefID,omitempty"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
}

// EngagementRepository implements ports.EngagementRepository on DynamoDB.
// The sort key encodes the record's uniqueness key, so duplicate reactions
// collide on a conditional put instead of needing a read-check-write.
type EngagementRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewEngagementRepository creates a new DynamoDB engagement repository
func NewEngagementRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *EngagementRepository {
	return &EngagementRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func engagementSK(userID string, kind engagement.Kind, refID string) string {
	return "ENG#" + string(kind) + "#" + userID + "#" + refID
}

// Save writes a record with a condition that rejects duplicates
func (r *EngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	item, err := attributevalue.MarshalMap(engagementRecord{
		PK:        targetPK(e.TargetID),
		SK:        engagementSK(e.UserID, e.Kind, e.RefID),
		GSI1PK:    "ENGID#" + e.ID,
		GSI1SK:    "ENGID#" + e.ID,
		ID:        e.ID,
		UserID:    e.UserID,
		TargetID:  e.TargetID,
		Kind:      string(e.Kind),
		RefID:     e.RefID,
		CreatedAt: e.CreatedAt,
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal engagement", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("engagement already recorded")
		}
		return pkgerrors.NewTransientError("save engagement", err)
	}
	return nil
}

// Find returns the user's record of one kind against a target
func (r *EngagementRepository) Find(ctx context.Context, userID, targetID string, kind engagement.Kind) (*engagement.Engagement, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(targetPK(targetID))).
		And(expression.Key("SK").BeginsWith("ENG#" + string(kind) + "#" + userID + "#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewTransientError("query engagement", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("engagement")
	}

	var record engagementRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal engagement", err)
	}
	return fromEngagementRecord(record), nil
}

// FindByRef returns the record tied to a derived post
func (r *EngagementRepository) FindByRef(ctx context.Context, targetID, refID string) (*engagement.Engagement, error) {
	records, err := r.queryTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.RefID == refID {
			return fromEngagementRecord(record), nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("engagement")
}

// Delete removes a record by id. Deleting an absent record is a no-op.
func (r *EngagementRepository) Delete(ctx context.Context, id string) error {
	record, err := r.findByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": record.PK,
		"SK": record.SK,
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal key", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	if err != nil {
		return pkgerrors.NewTransientError("delete engagement", err)
	}
	return nil
}

// FindByTarget returns every record against a target
func (r *EngagementRepository) FindByTarget(ctx context.Context, targetID string) ([]*engagement.Engagement, error) {
	records, err := r.queryTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	out := make([]*engagement.Engagement, 0, len(records))
	for _, record := range records {
		out = append(out, fromEngagementRecord(record))
	}
	return out, nil
}

// CountByTarget counts records of one kind against a target
func (r *EngagementRepository) CountByTarget(ctx context.Context, targetID string, kind engagement.Kind) (int, error) {
	records, err := r.queryTarget(ctx, targetID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, record := range records {
		if record.Kind == string(kind) {
			count++
		}
	}
	return count, nil
}

func (r *EngagementRepository) queryTarget(ctx context.Context, targetID string) ([]engagementRecord, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(targetPK(targetID))).
		And(expression.Key("SK").BeginsWith("ENG#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query", err)
	}

	var records []engagementRecord
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
			return nil, pkgerrors.NewTransientError("query engagements", err)
		}

		var batch []engagementRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &batch); err != nil {
			return nil, pkgerrors.NewInternalError("failed to unmarshal engagements", err)
		}
		records = append(records, batch...)

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

func (r *EngagementRepository) findByID(ctx context.Context, id string) (*engagementRecord, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("ENGID#" + id))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewTransientError("query engagement", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("engagement")
	}

	var record engagementRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal engagement", err)
	}
	return &record, nil
}

func fromEngagementRecord(record engagementRecord) *engagement.Engagement {
	return &engagement.Engagement{
		ID:        record.ID,
		UserID:    record.UserID,
		TargetID:  record.TargetID,
		Kind:      engagement.Kind(record.Kind),
		RefID:     record.RefID,
		CreatedAt: record.CreatedAt,
	}
}
