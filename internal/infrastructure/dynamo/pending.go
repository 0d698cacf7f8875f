package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/medskill-verify/internal/domain"
)

// PendingRepo stores registrations waiting for email verification.
// PK: email, GSI: verify_token-index. expires_at is the table TTL attribute.
type PendingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPendingRepo(client *dynamodb.Client, tableName string) *PendingRepo {
	return &PendingRepo{client: client, tableName: tableName}
}

// Upsert writes p, replacing any earlier registration (and its token) for the same email.
func (r *PendingRepo) Upsert(ctx context.Context, p *domain.PendingRegistration) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Claim resolves token to its row and takes the verification lease in one
// conditional update, so at most one caller proceeds per token.
func (r *PendingRepo) Claim(ctx context.Context, token, claimID string, until, now time.Time) (*domain.PendingRegistration, error) {
	email, err := r.emailForToken(ctx, token)
	if err != nil {
		return nil, err
	}

	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldClaimID:      claimID,
		fieldClaimedUntil: until.Unix(),
	})
	if err != nil {
		return nil, err
	}
	ue.Names["#tok"] = fieldVerifyToken
	ue.Names["#cid"] = fieldClaimID
	ue.Names["#cu"] = fieldClaimedUntil
	ue.Values[":tok"] = strVal(token)
	ue.Values[":now"] = numVal(now.Unix())

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 strKey(fieldEmail, email),
		UpdateExpression:                    aws.String(ue.Expr),
		ConditionExpression:                 aws.String("#tok = :tok AND (attribute_not_exists(#cid) OR #cu < :now)"),
		ExpressionAttributeNames:            ue.Names,
		ExpressionAttributeValues:           ue.Values,
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		if ccf, ok := conditionFailed(err); ok {
			return nil, claimFailure(ccf.Item, token)
		}
		return nil, err
	}
	var p domain.PendingRegistration
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// claimFailure tells a replaced or deleted row apart from one held by another claim.
func claimFailure(old map[string]types.AttributeValue, token string) error {
	if old == nil {
		return fmt.Errorf("pending registration: %w", domain.ErrNotFound)
	}
	var p domain.PendingRegistration
	if err := attributevalue.UnmarshalMap(old, &p); err != nil || p.VerifyToken != token {
		return fmt.Errorf("pending registration: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("pending registration claimed: %w", domain.ErrConflict)
}

// Release drops the lease if claimID still holds it. Losing the race is not an error.
func (r *PendingRepo) Release(ctx context.Context, email, claimID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String("REMOVE #cid, #cu"),
		ConditionExpression:       aws.String("#cid = :cid"),
		ExpressionAttributeNames:  map[string]string{"#cid": fieldClaimID, "#cu": fieldClaimedUntil},
		ExpressionAttributeValues: map[string]types.AttributeValue{":cid": strVal(claimID)},
	})
	if _, ok := conditionFailed(err); ok {
		return nil
	}
	return err
}

// Delete removes the row for email if claimID holds it. A missing row is a no-op;
// a row held by someone else returns domain.ErrConflict.
func (r *PendingRepo) Delete(ctx context.Context, email, claimID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		ConditionExpression:       aws.String("attribute_not_exists(#e) OR #cid = :cid"),
		ExpressionAttributeNames:  map[string]string{"#e": fieldEmail, "#cid": fieldClaimID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":cid": strVal(claimID)},
	})
	if _, ok := conditionFailed(err); ok {
		return fmt.Errorf("pending registration reclaimed: %w", domain.ErrConflict)
	}
	return err
}

func (r *PendingRepo) emailForToken(ctx context.Context, token string) (string, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexVerifyToken),
		KeyConditionExpression:    aws.String("#t = :t"),
		ExpressionAttributeNames:  map[string]string{"#t": fieldVerifyToken, "#e": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":t": strVal(token)},
		ProjectionExpression:      aws.String("#e"),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return "", err
	}
	if len(out.Items) == 0 {
		return "", fmt.Errorf("pending registration: %w", domain.ErrNotFound)
	}
	var row struct {
		Email string `dynamodbav:"email"`
	}
	if err := attributevalue.UnmarshalMap(out.Items[0], &row); err != nil {
		return "", err
	}
	return row.Email, nil
}
