// Package dynamodb implements the persistence ports on a single DynamoDB
// table. Partition layout:
//
//	CONTENT#<id>            META                         content aggregate
//	CONTENT#<id>            REV#<seq>                    revision snapshot
//	TARGET#<id>             ENG#<kind>#<user>#<ref>      engagement record
//	COMMENT#<id>            META                         comment
//	FEED#<viewer>           ITEM#<createdAt>#<id>        feed item
//	FOLLOWERS#<user>        USER#<follower>              follow edge
//	FOLLOWING#<user>        USER#<followee>              follow edge (reverse)
//
// GSI1 serves by-author content listings, comment-by-id lookups and feed
// aggregator groups; GSI2 serves derived-post and feed-by-content lookups.
package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const (
	gsi1Name = "GSI1"
	gsi2Name = "GSI2"
)

// DynamoDBAPI is the subset of the DynamoDB client the repositories use
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

func contentPK(id string) string          { return "CONTENT#" + id }
func revisionSK(seq int) string           { return fmt.Sprintf("REV#%08d", seq) }
func targetPK(id string) string           { return "TARGET#" + id }
func commentPK(id string) string          { return "COMMENT#" + id }
func feedPK(viewerID string) string       { return "FEED#" + viewerID }
func followersPK(userID string) string    { return "FOLLOWERS#" + userID }
func followingPK(userID string) string    { return "FOLLOWING#" + userID }
func authorGSI1PK(authorID string) string { return "USER#" + authorID }
func derivedGSI2PK(originalID string) string {
	return "ORIGINAL#" + originalID
}
