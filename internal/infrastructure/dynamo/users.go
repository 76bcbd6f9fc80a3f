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
	"github.com/aws/smithy-go"
	"github.com/go-notify-nosql/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    itemAPI
	tableName string
}

func NewUserRepo(client itemAPI, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexUsername),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldUsername},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: username}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetDeviceTokens overwrites device_tokens when the stored version still equals
// version, bumping the version. A stale version yields domain.ErrConflict.
func (r *UserRepo) SetDeviceTokens(ctx context.Context, userID string, tokens []string, version int64) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldUserID
	ue.Names["#ver"] = fieldVersion
	ue.Names["#tok"] = fieldDeviceTokens
	ue.Values[":tok"] = stringList(tokens)
	ue.Values[":expected"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(version, 10)}
	ue.Values[":zero"] = &types.AttributeValueMemberN{Value: "0"}
	ue.Values[":one"] = &types.AttributeValueMemberN{Value: "1"}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr + ", #tok = :tok, #ver = if_not_exists(#ver, :zero) + :one"),
		ConditionExpression:       aws.String("attribute_exists(#pk) AND (#ver = :expected OR attribute_not_exists(#ver))"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("device tokens of %s changed concurrently: %w", userID, domain.ErrConflict)
	}
	return err
}

// PrependNotification puts notificationID at the head of the user's feed with a
// single list_append, so concurrent prepends never overwrite each other.
// list_append rejects a feed stored as NULL; such a feed is replaced instead.
func (r *UserRepo) PrependNotification(ctx context.Context, userID, notificationID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	err := r.appendToFeed(ctx, userID, notificationID, now)
	if !isValidationError(err) {
		return feedError(userID, err)
	}

	err = r.replaceNullFeed(ctx, userID, notificationID, now)
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		// Another writer replaced the NULL first, or the user is gone.
		err = r.appendToFeed(ctx, userID, notificationID, now)
	}
	return feedError(userID, err)
}

func (r *UserRepo) appendToFeed(ctx context.Context, userID, notificationID, now string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldUserID, userID),
		UpdateExpression:    aws.String("SET #n = list_append(:new, if_not_exists(#n, :empty)), #u = :now"),
		ConditionExpression: aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#n":  fieldNotifications,
			"#u":  fieldUpdatedAt,
			"#pk": fieldUserID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":   stringList([]string{notificationID}),
			":empty": stringList(nil),
			":now":   &types.AttributeValueMemberS{Value: now},
		},
	})
	return err
}

func (r *UserRepo) replaceNullFeed(ctx context.Context, userID, notificationID, now string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldUserID, userID),
		UpdateExpression:    aws.String("SET #n = :new, #u = :now"),
		ConditionExpression: aws.String("attribute_exists(#pk) AND attribute_type(#n, :null)"),
		ExpressionAttributeNames: map[string]string{
			"#n":  fieldNotifications,
			"#u":  fieldUpdatedAt,
			"#pk": fieldUserID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":  stringList([]string{notificationID}),
			":null": &types.AttributeValueMemberS{Value: "NULL"},
			":now":  &types.AttributeValueMemberS{Value: now},
		},
	})
	return err
}

func feedError(userID string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("user %s not found: %w", userID, domain.ErrNotFound)
	}
	return err
}

func isValidationError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException"
}
