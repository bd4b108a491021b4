package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/td-studios/auth-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the user accounts table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Put inserts a new account in a single transaction with one uniqueness marker
// row per unique field. The markers live in the same table under a reserved key
// prefix and carry no GSI attributes, so two racing signups for the same
// username cannot both commit: the loser's marker put fails its condition and
// the whole transaction is cancelled.
func (r *UserRepo) Put(ctx context.Context, u *domain.UserAccount) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(user_id)"),
		},
	}}
	// Tracks which unique field each transaction item guards, by position.
	fields := []string{"account"}
	addMarker := func(field, value string) {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item: map[string]types.AttributeValue{
					"user_id":    &types.AttributeValueMemberS{Value: markerKey(field, value)},
					"account_id": &types.AttributeValueMemberS{Value: u.UserID},
				},
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			},
		})
		fields = append(fields, field)
	}
	addMarker("username", u.Username)
	if u.Phone != nil {
		addMarker("phone", *u.Phone)
	}
	if u.Email != nil {
		addMarker("email", *u.Email)
	}
	if u.InstagramHandle != nil {
		addMarker("instagram", *u.InstagramHandle)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		if conflict := classifyConflict(fields, tce.CancellationReasons); conflict != nil {
			return conflict
		}
	}
	return err
}

// markerKey builds the primary key of a uniqueness marker row. The "uniq#"
// prefix cannot collide with ULID account keys.
func markerKey(field, value string) string {
	return "uniq#" + field + "#" + value
}

// classifyConflict maps a cancelled insert transaction back to the unique field
// that collided. Returns nil when the cancellation was not a condition failure
// (e.g. a transient transaction conflict), letting the raw error surface.
func classifyConflict(fields []string, reasons []types.CancellationReason) error {
	msgs := map[string]string{
		"username":  "username already taken",
		"phone":     "phone number already registered",
		"email":     "email already registered",
		"instagram": "Instagram handle already registered",
	}
	for i, reason := range reasons {
		if i >= len(fields) || reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		if msg, ok := msgs[fields[i]]; ok {
			return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
		}
		return fmt.Errorf("account already exists: %w", domain.ErrConflict)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.UserAccount, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.UserAccount
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "username-index", "username", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "phone-index", "phone", phone)
}

func (r *UserRepo) GetByInstagram(ctx context.Context, handle string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "instagram-index", "instagram_handle", handle)
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("user_id", userID),
		UpdateExpression:         aws.String(ue.Expr),
		ExpressionAttributeNames: ue.Names,
	}
	if len(ue.Values) > 0 {
		input.ExpressionAttributeValues = ue.Values
	}
	_, err = r.client.UpdateItem(ctx, input)
	return err
}

// IncrementFailedAttempts bumps the failed-login counter with a store-side
// atomic ADD and returns the new value. Two concurrent failures never
// under-count: the read-modify-write happens inside DynamoDB.
func (r *UserRepo) IncrementFailedAttempts(ctx context.Context, userID string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("user_id", userID),
		UpdateExpression:         aws.String("ADD failed_login_attempts :one SET updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}
	n, ok := out.Attributes["failed_login_attempts"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("unexpected attribute type for failed_login_attempts")
	}
	count, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SetLockedUntil stamps the account lockout timestamp.
func (r *UserRepo) SetLockedUntil(ctx context.Context, userID string, until time.Time) error {
	return r.Update(ctx, userID, map[string]interface{}{
		"account_locked_until": until.UTC(),
	})
}

// ResetLoginState clears the failure counter and any lock, and records the
// successful login time.
func (r *UserRepo) ResetLoginState(ctx context.Context, userID string, lastLogin time.Time) error {
	return r.Update(ctx, userID, map[string]interface{}{
		"failed_login_attempts": 0,
		"account_locked_until":  nil,
		"last_login_at":         lastLogin.UTC(),
	})
}

// UpgradePinHash replaces the stored secret, used by the legacy-to-bcrypt
// migration path after a successful legacy verification.
func (r *UserRepo) UpgradePinHash(ctx context.Context, userID string, secret domain.PinSecret) error {
	return r.Update(ctx, userID, map[string]interface{}{
		"pin_hash":        secret.Digest,
		"pin_hash_scheme": secret.Scheme,
	})
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.UserAccount, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.UserAccount
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
