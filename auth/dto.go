package auth

// Data transfer objects for the auth HTTP surface. The validate tags carry
// the same constraints the clients enforce, so the server never trusts the
// client-side check alone.

// SignupRequest represents the signup request payload.
type SignupRequest struct {
	Name     string `json:"name" validate:"required" example:"Alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@test.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@test.com"`
	Password string `json:"password" validate:"required,min=1" example:"secret1"`
}

// ForgotRequest asks for a password-reset code to be mailed.
type ForgotRequest struct {
	Email string `json:"email" validate:"required,email" example:"alice@test.com"`
}

// VerifyForgotRequest submits a previously mailed reset code. The email
// discriminates which outstanding code is being answered.
type VerifyForgotRequest struct {
	Email string `json:"email" validate:"required,email" example:"alice@test.com"`
	Code  int    `json:"code" validate:"required" example:"483920"`
}

// ResetRequest changes the password after code verification.
type ResetRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@test.com"`
	Password string `json:"password" validate:"required,min=6" example:"newsecret"`
	Confirm  string `json:"confirm" validate:"required,min=6" example:"newsecret"`
}

// UpdateProfileRequest carries a new profile image as a base64 data URI or a
// plain URL.
type UpdateProfileRequest struct {
	Image string `json:"image" validate:"required" example:"data:image/png;base64,iVBOR..."`
}

// GoogleCallbackRequest carries the authorization code returned by Google's
// consent screen.
type GoogleCallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

// SessionResponse is returned on successful login through either enrollment
// path.
type SessionResponse struct {
	OK    bool   `json:"ok" example:"true"`
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  *User  `json:"user"`
}
