package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/td-studios/auth-api/internal/domain"
	"github.com/td-studios/auth-api/internal/pkg/id"
)

// attemptRetention bounds ledger growth via DynamoDB TTL. Well beyond any
// rate-limit window so aggregate queries are never affected.
const attemptRetention = 30 * 24 * time.Hour

// AttemptRepo is the append-only login attempt ledger.
// PK: scope (username "#" ip), SK: attempt_id (ULID). Because ULIDs embed the
// creation timestamp, a key range query bounds the sliding window without a
// filter on created_at.
type AttemptRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAttemptRepo(client *dynamodb.Client, tableName string) *AttemptRepo {
	return &AttemptRepo{client: client, tableName: tableName}
}

// Put appends one attempt row. Rows are never mutated afterwards.
func (r *AttemptRepo) Put(ctx context.Context, a *domain.LoginAttempt) error {
	if a.AttemptID == "" {
		a.AttemptID = id.New()
	}
	a.Scope = domain.AttemptScope(a.Username, a.IPAddress)
	a.TTL = a.CreatedAt.Add(attemptRetention).Unix()
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// FailuresSince returns the failed attempts for a username+origin pair whose
// id falls at or after the given instant, oldest first.
func (r *AttemptRepo) FailuresSince(ctx context.Context, username, ip string, since time.Time) ([]domain.LoginAttempt, error) {
	// "scope" is a DynamoDB reserved word.
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#scope = :s AND attempt_id >= :min"),
		FilterExpression:       aws.String("success = :f"),
		ExpressionAttributeNames: map[string]string{
			"#scope": "scope",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s":   &types.AttributeValueMemberS{Value: domain.AttemptScope(username, ip)},
			":min": &types.AttributeValueMemberS{Value: id.FloorAt(since)},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return nil, err
	}
	var attempts []domain.LoginAttempt
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// CountsSince scans the ledger for aggregate attempt counts in the trailing
// window. Admin-only; volume is bounded by the TTL retention.
func (r *AttemptRepo) CountsSince(ctx context.Context, since time.Time) (total, failed int, err error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("attempt_id >= :min"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":min": &types.AttributeValueMemberS{Value: id.FloorAt(since)},
		},
	}
	for {
		out, scanErr := r.client.Scan(ctx, input)
		if scanErr != nil {
			return 0, 0, scanErr
		}
		var attempts []domain.LoginAttempt
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &attempts); err != nil {
			return 0, 0, err
		}
		for _, a := range attempts {
			total++
			if !a.Success {
				failed++
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return total, failed, nil
}
