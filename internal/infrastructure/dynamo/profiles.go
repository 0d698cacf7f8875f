package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/medskill-verify/internal/domain"
)

// ProfileRepo provides typed DynamoDB operations for the users table.
// PK: user_id (the identity provider's id), GSI: email-index.
type ProfileRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProfileRepo(client *dynamodb.Client, tableName string) *ProfileRepo {
	return &ProfileRepo{client: client, tableName: tableName}
}

// Insert creates the profile. An existing row for the same user_id returns domain.ErrConflict.
func (r *ProfileRepo) Insert(ctx context.Context, p *domain.UserProfile) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal user profile: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": fieldUserID},
	})
	if _, ok := conditionFailed(err); ok {
		return fmt.Errorf("user profile %s: %w", p.UserID, domain.ErrConflict)
	}
	return err
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user profile not found: %w", domain.ErrNotFound)
	}
	var p domain.UserProfile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
