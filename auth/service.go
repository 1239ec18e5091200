package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/entreflow-go/apperror"
	"github.com/user/entreflow-go/config"
	"github.com/user/entreflow-go/mail"
	"github.com/user/entreflow-go/storage"
)

// tokenTypeSession discriminates session tokens from anything else signed
// with the same key.
const tokenTypeSession = "session"

// SessionClaims is the payload of a session token: a snapshot of the user's
// public fields at issuance time. Profile edits after login are not
// reflected until the user re-authenticates.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Image     string `json:"image"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// AuthService provides signup, login, session and password-reset operations.
type AuthService struct {
	store    *UserStore
	authCfg  config.AuthConfig
	codes    *ResetCodeStore
	mailer   mail.Mailer
	uploader storage.Uploader
	oauth    OAuthProvider
	validate *validator.Validate
}

// NewAuthService wires the service with its collaborators.
func NewAuthService(
	store *UserStore,
	authCfg config.AuthConfig,
	codes *ResetCodeStore,
	mailer mail.Mailer,
	uploader storage.Uploader,
	oauth OAuthProvider,
) *AuthService {
	return &AuthService{
		store:    store,
		authCfg:  authCfg,
		codes:    codes,
		mailer:   mailer,
		uploader: uploader,
		oauth:    oauth,
		validate: validator.New(),
	}
}

// Signup creates a new credential account. The password is bcrypt-hashed
// before it ever reaches the store. Signup does not log the user in; the
// client authenticates afterwards.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("credentials are not valid", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("Signup failed", err)
	}

	user := &User{
		ID:             uuid.New(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: string(hashedPassword),
		Role:           RoleUser,
		ProfileImage:   DefaultProfileImage,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user created", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login authenticates with email and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, *User, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", nil, apperror.NewValidationError("credentials are not valid", err)
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, err
	}

	// Accounts enrolled only through OAuth have no hash to compare against
	// and can never pass a password login.
	if !user.HasPassword() {
		return "", nil, apperror.NewAuthError("Invalid Credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return "", nil, apperror.NewAuthError("Invalid Credentials", nil)
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GoogleLoginURL returns the consent-screen URL for the external enrollment
// path.
func (s *AuthService) GoogleLoginURL(state string) string {
	return s.oauth.LoginURL(state)
}

// GoogleCallback completes the external enrollment path: the authorization
// code is exchanged for a verified profile, an account is looked up by email
// or created with the external linkage, and a session is issued from the
// account's public fields.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (string, *User, error) {
	profile, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", nil, apperror.NewUpstreamError("Google login failed", err)
	}

	user, err := s.store.FindByEmail(ctx, profile.Email)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return "", nil, err
		}
		image := profile.Picture
		if image == "" {
			image = DefaultProfileImage
		}
		subject := profile.SubjectID
		user = &User{
			ID:               uuid.New(),
			Name:             profile.Name,
			Email:            profile.Email,
			Role:             RoleUser,
			ProfileImage:     image,
			SocialProviderID: &subject,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return "", nil, err
		}
		slog.Info("user created from external profile",
			slog.String("user_id", user.ID.String()),
			slog.String("provider", "google"),
		)
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueSession signs a session token carrying the user's public snapshot.
func (s *AuthService) IssueSession(user *User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:    user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Image:     user.ProfileImage,
		Role:      user.Role,
		TokenType: tokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.authCfg.SessionDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "entreflow",
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.authCfg.JWTSecret))
	if err != nil {
		return "", apperror.NewInternalError("failed to sign session token", err)
	}
	return signed, nil
}

// CurrentUser resolves a session's identity against live storage. The
// token's snapshot may be stale; callers that need fresh fields come here.
func (s *AuthService) CurrentUser(ctx context.Context, claims *SessionClaims) (*User, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.NewAuthError("Not Authenticated", err)
	}
	return s.store.FindByID(ctx, id)
}

// UpdateProfileImage uploads a new profile image and stores its URL.
func (s *AuthService) UpdateProfileImage(ctx context.Context, claims *SessionClaims, req UpdateProfileRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperror.NewValidationError("Profile update failed", err)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return apperror.NewAuthError("Not Authenticated", err)
	}

	imageURL, err := s.uploader.Upload(ctx, req.Image)
	if err != nil {
		return apperror.NewUpstreamError("Profile update failed", err)
	}

	return s.store.UpdateProfile(ctx, id, claims.Name, imageURL)
}

// RequestResetCode starts the forgot-password flow: a 6-digit code is
// recorded for the email and mailed out. Mail dispatch is fire-and-forget;
// a delivery failure is logged and the caller still gets the code.
func (s *AuthService) RequestResetCode(ctx context.Context, req ForgotRequest) (int, error) {
	if err := s.validate.Struct(req); err != nil {
		return 0, apperror.NewValidationError("credentials are not valid", err)
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return 0, err
	}

	code, err := s.codes.Issue(user.Email)
	if err != nil {
		return 0, apperror.NewInternalError("Forgot password request failed", err)
	}

	go func(to string, code int) {
		body, err := mail.ResetCodeBody(code)
		if err != nil {
			slog.Error("failed to render reset code mail", slog.String("error", err.Error()))
			return
		}
		if err := s.mailer.Send(to, mail.ResetCodeSubject, body); err != nil {
			slog.Error("failed to send reset code mail",
				slog.String("to", to),
				slog.String("error", err.Error()),
			)
		}
	}(user.Email, code)

	return code, nil
}

// VerifyResetCode checks a submitted code against the outstanding one for
// the email. Neither match nor mismatch consumes the code.
func (s *AuthService) VerifyResetCode(req VerifyForgotRequest) error {
	if !s.codes.Verify(req.Email, req.Code) {
		return apperror.NewBadRequestError("Enter correct code", nil)
	}
	return nil
}

// ResetPassword overwrites the account's password after the usual checks.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperror.NewValidationError("credentials are not valid", err)
	}
	if req.Password != req.Confirm {
		return apperror.NewBadRequestError("Passwords do not match", nil)
	}

	if _, err := s.store.FindByEmail(ctx, req.Email); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternalError("Reset password failed", err)
	}
	return s.store.UpdatePassword(ctx, req.Email, string(hashedPassword))
}
