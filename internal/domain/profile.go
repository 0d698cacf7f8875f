package domain

import "time"

// UserProfile is the application's own user row. UserID always equals the
// identity provider's id for the same account.
type UserProfile struct {
	UserID     string    `json:"id" dynamodbav:"user_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	FullName   *string   `json:"full_name" dynamodbav:"full_name"`
	University *string   `json:"university" dynamodbav:"university"`
	IsVerified bool      `json:"is_verified" dynamodbav:"is_verified"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
