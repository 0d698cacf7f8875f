package domain

// Metadata keys written into the identity provider's user metadata.
const (
	MetaFullName   = "full_name"
	MetaUniversity = "university"
)

// Identity is a user record owned by the external identity provider.
type Identity struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	EmailConfirmed bool           `json:"email_confirmed"`
	Metadata       map[string]any `json:"user_metadata,omitempty"`
}

// NewIdentity describes an identity to be created. PasswordHash is a bcrypt
// hash; the plaintext never leaves the intake request.
type NewIdentity struct {
	Email          string
	PasswordHash   string
	EmailConfirmed bool
	Metadata       map[string]any
}

// ProfileMetadata builds the metadata map synchronized from a pending registration.
func ProfileMetadata(fullName, university string) map[string]any {
	return map[string]any{
		MetaFullName:   fullName,
		MetaUniversity: university,
	}
}
