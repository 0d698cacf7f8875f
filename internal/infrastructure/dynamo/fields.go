package dynamo

// DynamoDB attribute and index names used in expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail        = "email"
	fieldUserID       = "user_id"
	fieldVerifyToken  = "verify_token"
	fieldClaimID      = "claim_id"
	fieldClaimedUntil = "claimed_until"
	fieldExpiresAt    = "expires_at"

	indexVerifyToken = "verify_token-index"
	indexEmail       = "email-index"
)
