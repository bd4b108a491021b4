package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/td-studios/auth-api/internal/domain"
)

// AccessCodeRepo provides typed DynamoDB operations for the access codes table.
// PK: code (stored upper-cased and trimmed).
type AccessCodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAccessCodeRepo(client *dynamodb.Client, tableName string) *AccessCodeRepo {
	return &AccessCodeRepo{client: client, tableName: tableName}
}

func (r *AccessCodeRepo) Put(ctx context.Context, c *domain.AccessCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal access code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(code)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("access code already exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *AccessCodeRepo) Get(ctx context.Context, code string) (*domain.AccessCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("access code not found: %w", domain.ErrNotFound)
	}
	var c domain.AccessCode
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List scans the whole registry. The table is small and administrative, so a
// scan is acceptable here.
func (r *AccessCodeRepo) List(ctx context.Context) ([]domain.AccessCode, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var codes []domain.AccessCode
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *AccessCodeRepo) Update(ctx context.Context, code string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("code", code),
		UpdateExpression:         aws.String(ue.Expr),
		ExpressionAttributeNames: ue.Names,
		ConditionExpression:      aws.String("attribute_exists(code)"),
	}
	if len(ue.Values) > 0 {
		input.ExpressionAttributeValues = ue.Values
	}
	_, err = r.client.UpdateItem(ctx, input)
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("access code not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *AccessCodeRepo) Delete(ctx context.Context, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	return err
}

// ConsumeUse atomically increments the use counter, refusing when the code has
// been deactivated or the cap was reached by a concurrent signup. The gate is
// store-side so two racing signups cannot both redeem the last use.
func (r *AccessCodeRepo) ConsumeUse(ctx context.Context, code string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("code", code),
		UpdateExpression: aws.String("ADD current_uses :one"),
		ConditionExpression: aws.String(
			"attribute_exists(code) AND is_active = :true AND (attribute_not_exists(max_uses) OR current_uses < max_uses)",
		),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("access code is no longer usable: %w", domain.ErrForbidden)
	}
	return err
}
