package dynamodb

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"castfeed-backend/domain/content"
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

type contentRecord struct {
	PK            string                   `dynamodbav:"PK"`
	SK            string                   `dynamodbav:"SK"`
	GSI1PK        string                   `dynamodbav:"GSI1PK"`
	GSI1SK        string                   `dynamodbav:"GSI1SK"`
	GSI2PK        string                   `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK        string                   `dynamodbav:"GSI2SK,omitempty"`
	ID            string                   `dynamodbav:"ID"`
	AuthorID      string                   `dynamodbav:"AuthorID"`
	ContentType   string                   `dynamodbav:"ContentType"`
	Payload       content.Payload          `dynamodbav:"Payload"`
	Hashtags      []string                 `dynamodbav:"Hashtags,omitempty"`
	OriginalRef   *content.OriginalRef     `dynamodbav:"OriginalRef,omitempty"`
	Engagements   map[string]summaryRecord `dynamodbav:"Engagements,omitempty"`
	RevisionCount int                      `dynamodbav:"RevisionCount"`
	Visibility    string                   `dynamodbav:"Visibility"`
	CreatedAt     time.Time                `dynamodbav:"CreatedAt"`
	UpdatedAt     time.Time                `dynamodbav:"UpdatedAt"`
}

// summaryRecord stores a cached engagement summary with the participants as
// a DynamoDB string set, so counter updates can run as ADD and DELETE
// actions on the nested attribute path instead of rewriting the item.
type summaryRecord struct {
	Count        int      `dynamodbav:"Count"`
	Participants []string `dynamodbav:"Participants,stringset,omitempty"`
}

type revisionRecord struct {
	PK        string          `dynamodbav:"PK"`
	SK        string          `dynamodbav:"SK"`
	ContentID string          `dynamodbav:"ContentID"`
	Seq       int             `dynamodbav:"Seq"`
	Payload   content.Payload `dynamodbav:"Payload"`
	CreatedAt time.Time       `dynamodbav:"CreatedAt"`
}

// ContentRepository implements ports.ContentRepository on DynamoDB
type ContentRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewContentRepository creates a new DynamoDB content repository
func NewContentRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *ContentRepository {
	return &ContentRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Save upserts the content aggregate
func (r *ContentRepository) Save(ctx context.Context, c *content.Content) error {
	item, err := attributevalue.MarshalMap(toContentRecord(c))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal content", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return pkgerrors.NewTransientError("save content", err)
	}
	return nil
}

// ApplyEngagementDelta adjusts one cached counter through an UpdateItem on
// the nested summary attribute, so concurrent reactions never clobber each
// other or the surrounding item. The count uses an atomic ADD; participants
// are a string set updated with ADD/DELETE in the same request. Decrements
// carry a zero-floor condition and settle as a no-op when it fails.
func (r *ContentRepository) ApplyEngagementDelta(ctx context.Context, contentID string, kind engagement.Kind, delta int, userID string, dropParticipant bool) error {
	if delta > 0 {
		err := r.updateSummary(ctx, contentID, kind, delta, userID, false)
		if !isConditionalCheckFailed(err) {
			return err
		}
		// first reaction of this kind on the content: create the summary
		// entry, then re-apply. A concurrent seeder is harmless since both
		// seed writes are if_not_exists.
		if err := r.seedSummary(ctx, contentID, kind); err != nil {
			return err
		}
		if err := r.updateSummary(ctx, contentID, kind, delta, userID, false); err != nil {
			if isConditionalCheckFailed(err) {
				return pkgerrors.NewTransientError("update engagement counter", err)
			}
			return err
		}
		return nil
	}

	err := r.updateSummary(ctx, contentID, kind, delta, userID, dropParticipant)
	if isConditionalCheckFailed(err) {
		// count already at zero, or nothing of this kind recorded yet
		return nil
	}
	return err
}

func (r *ContentRepository) updateSummary(ctx context.Context, contentID string, kind engagement.Kind, delta int, userID string, dropParticipant bool) error {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": contentPK(contentID),
		"SK": "META",
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal key", err)
	}

	names := map[string]string{
		"#eng": "Engagements",
		"#k":   string(kind),
		"#c":   "Count",
	}
	values := map[string]types.AttributeValue{
		":d": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
	}

	update := "ADD #eng.#k.#c :d"
	condition := "attribute_exists(#eng.#k)"
	switch {
	case delta > 0 && userID != "":
		names["#p"] = "Participants"
		values[":u"] = &types.AttributeValueMemberSS{Value: []string{userID}}
		update += ", #eng.#k.#p :u"
	case delta < 0 && dropParticipant && userID != "":
		names["#p"] = "Participants"
		values[":u"] = &types.AttributeValueMemberSS{Value: []string{userID}}
		update = "ADD #eng.#k.#c :d DELETE #eng.#k.#p :u"
	}
	if delta < 0 {
		values[":floor"] = &types.AttributeValueMemberN{Value: strconv.Itoa(-delta)}
		condition += " AND #eng.#k.#c >= :floor"
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       key,
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return err
		}
		return pkgerrors.NewTransientError("update engagement counter", err)
	}
	return nil
}

// seedSummary makes sure Engagements and the per-kind summary map exist so
// the nested ADD path resolves. Both writes are idempotent under races.
func (r *ContentRepository) seedSummary(ctx context.Context, contentID string, kind engagement.Kind) error {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": contentPK(contentID),
		"SK": "META",
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal key", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      key,
		UpdateExpression:         aws.String("SET #eng = if_not_exists(#eng, :empty)"),
		ConditionExpression:      aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{"#eng": "Engagements"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewNotFoundError("content")
		}
		return pkgerrors.NewTransientError("seed engagement summary", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              key,
		UpdateExpression: aws.String("SET #eng.#k = if_not_exists(#eng.#k, :zero)"),
		ExpressionAttributeNames: map[string]string{
			"#eng": "Engagements",
			"#k":   string(kind),
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"Count": &types.AttributeValueMemberN{Value: "0"},
			}},
		},
	})
	if err != nil {
		return pkgerrors.NewTransientError("seed engagement summary", err)
	}
	return nil
}

func isConditionalCheckFailed(err error) bool {
	var conditionFailed *types.ConditionalCheckFailedException
	return errors.As(err, &conditionFailed)
}

// FindByID returns the content, including tombstones
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*content.Content, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": contentPK(id),
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
		return nil, pkgerrors.NewTransientError("get content", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("content")
	}

	var record contentRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal content", err)
	}
	return fromContentRecord(record), nil
}

// FindByAuthor pages the author's live posts. The partition is read in SK
// order (updatedAt); createdAt sorting is settled client-side.
func (r *ContentRepository) FindByAuthor(ctx context.Context, authorID string, page common.PaginationParams) ([]*content.Content, int, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(authorGSI1PK(authorID)))
	filter := expression.Name("Visibility").Equal(expression.Value(string(content.VisibilityPublished)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, 0, pkgerrors.NewInternalError("failed to build query", err)
	}

	records, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, 0, err
	}

	items := make([]*content.Content, 0, len(records))
	for _, record := range records {
		items = append(items, fromContentRecord(record))
	}
	sortContents(items, page)

	total := len(items)
	offset := page.Offset()
	if offset >= len(items) {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], total, nil
}

// FindDerived returns live recasts and quotes pointing at the original
func (r *ContentRepository) FindDerived(ctx context.Context, originalID string) ([]*content.Content, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(derivedGSI2PK(originalID)))
	filter := expression.Name("Visibility").Equal(expression.Value(string(content.VisibilityPublished)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query", err)
	}

	records, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi2Name),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*content.Content, 0, len(records))
	for _, record := range records {
		out = append(out, fromContentRecord(record))
	}
	return out, nil
}

// FindRecastByAuthor returns the author's live recast of the original
func (r *ContentRepository) FindRecastByAuthor(ctx context.Context, authorID, originalID string) (*content.Content, error) {
	derived, err := r.FindDerived(ctx, originalID)
	if err != nil {
		return nil, err
	}
	for _, c := range derived {
		if c.IsRecast() && c.AuthorID() == authorID {
			return c, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("recast")
}

// SaveRevision writes a revision snapshot. The same sequence written twice
// overwrites in place, keeping retries idempotent.
func (r *ContentRepository) SaveRevision(ctx context.Context, rev content.Revision) error {
	item, err := attributevalue.MarshalMap(revisionRecord{
		PK:        contentPK(rev.ContentID),
		SK:        revisionSK(rev.Seq),
		ContentID: rev.ContentID,
		Seq:       rev.Seq,
		Payload:   rev.Payload,
		CreatedAt: rev.CreatedAt,
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal revision", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return pkgerrors.NewTransientError("save revision", err)
	}
	return nil
}

// FindRevisions pages the revision history, newest sequence first
func (r *ContentRepository) FindRevisions(ctx context.Context, contentID string, page common.PaginationParams) ([]content.Revision, int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(contentPK(contentID))).
		And(expression.Key("SK").BeginsWith("REV#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, 0, pkgerrors.NewInternalError("failed to build query", err)
	}

	var revisions []content.Revision
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, 0, pkgerrors.NewTransientError("query revisions", err)
		}

		var records []revisionRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
			return nil, 0, pkgerrors.NewInternalError("failed to unmarshal revisions", err)
		}
		for _, record := range records {
			revisions = append(revisions, content.Revision{
				ContentID: record.ContentID,
				Seq:       record.Seq,
				Payload:   record.Payload,
				CreatedAt: record.CreatedAt,
			})
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	total := len(revisions)
	offset := page.Offset()
	if offset >= len(revisions) {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > len(revisions) {
		end = len(revisions)
	}
	return revisions[offset:end], total, nil
}

// FindRevision returns one revision by sequence number
func (r *ContentRepository) FindRevision(ctx context.Context, contentID string, seq int) (*content.Revision, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": contentPK(contentID),
		"SK": revisionSK(seq),
	})
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to marshal key", err)
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, pkgerrors.NewTransientError("get revision", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("revision")
	}

	var record revisionRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal revision", err)
	}
	return &content.Revision{
		ContentID: record.ContentID,
		Seq:       record.Seq,
		Payload:   record.Payload,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (r *ContentRepository) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]contentRecord, error) {
	var records []contentRecord
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewTransientError("query content", err)
		}

		var batch []contentRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &batch); err != nil {
			return nil, pkgerrors.NewInternalError("failed to unmarshal content", err)
		}
		records = append(records, batch...)

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func toContentRecord(c *content.Content) contentRecord {
	engagements := make(map[string]summaryRecord)
	for kind, summary := range c.Engagements() {
		engagements[string(kind)] = summaryRecord{
			Count:        summary.Count,
			Participants: summary.Participants,
		}
	}

	record := contentRecord{
		PK:            contentPK(c.ID()),
		SK:            "META",
		GSI1PK:        authorGSI1PK(c.AuthorID()),
		GSI1SK:        "CONTENT#" + c.UpdatedAt().UTC().Format(time.RFC3339Nano) + "#" + c.ID(),
		ID:            c.ID(),
		AuthorID:      c.AuthorID(),
		ContentType:   string(c.Type()),
		Payload:       c.Payload(),
		Hashtags:      c.Hashtags(),
		OriginalRef:   c.OriginalRef(),
		Engagements:   engagements,
		RevisionCount: c.RevisionCount(),
		Visibility:    string(c.Visibility()),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
	if ref := c.OriginalRef(); ref != nil {
		record.GSI2PK = derivedGSI2PK(ref.ID)
		record.GSI2SK = "CONTENT#" + c.ID()
	}
	return record
}

func fromContentRecord(record contentRecord) *content.Content {
	engagements := make(map[engagement.Kind]engagement.Summary, len(record.Engagements))
	for kind, summary := range record.Engagements {
		engagements[engagement.Kind(kind)] = engagement.Summary{
			Count:        summary.Count,
			Participants: summary.Participants,
		}
	}

	return content.Reconstruct(
		record.ID,
		record.AuthorID,
		content.Type(record.ContentType),
		record.Payload,
		record.Hashtags,
		record.OriginalRef,
		engagements,
		record.RevisionCount,
		content.Visibility(record.Visibility),
		record.CreatedAt,
		record.UpdatedAt,
	)
}

func sortContents(items []*content.Content, page common.PaginationParams) {
	asc := page.Order == "asc"
	byCreated := page.SortBy == "createdAt"
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		at, bt := a.UpdatedAt(), b.UpdatedAt()
		if byCreated {
			at, bt = a.CreatedAt(), b.CreatedAt()
		}
		var before bool
		if at.Equal(bt) {
			before = a.ID() < b.ID()
		} else {
			before = at.Before(bt)
		}
		if asc {
			return before
		}
		return !before
	})
}
