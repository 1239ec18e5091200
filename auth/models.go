// Package auth implements the credential lifecycle and session identity for
// the application: signup, login (password and Google enrollment), the
// password-reset flow, and session token issuance and verification.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultProfileImage is the sentinel image assigned to accounts that never
// uploaded one.
const DefaultProfileImage = "/default/default.png"

// User represents a user account. The JSON keys mirror the API's document
// shape; the password hash is never serialized.
type User struct {
	ID               uuid.UUID `json:"_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	HashedPassword   string    `json:"-"`
	Role             string    `json:"role"`
	ProfileImage     string    `json:"profileImage"`
	SocialProviderID *string   `json:"socialProviderId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can authenticate with credentials.
// Accounts created through the OAuth path may have no password at all.
func (u *User) HasPassword() bool {
	return u.HashedPassword != ""
}
