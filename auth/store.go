package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/entreflow-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the store needs. Narrowing to an
// interface lets tests drive the store with pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore persists user accounts.
type UserStore struct {
	db DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, name, email, password, role, profile_image, social_provider_id, created_at, updated_at`

// scanUser reads one user row. password and social_provider_id are nullable.
func scanUser(row pgx.Row) (*User, error) {
	var u User
	var password, social sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &password, &u.Role, &u.ProfileImage, &social, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if password.Valid {
		u.HashedPassword = password.String
	}
	if social.Valid {
		u.SocialProviderID = &social.String
	}
	return &u, nil
}

// CreateUser inserts a new account. A duplicate email surfaces as a
// ConflictError with the message the clients expect.
func (s *UserStore) CreateUser(ctx context.Context, user *User) error {
	var password any
	if user.HashedPassword != "" {
		password = user.HashedPassword
	}
	var social any
	if user.SocialProviderID != nil {
		social = *user.SocialProviderID
	}

	query := `INSERT INTO users (id, name, email, password, role, profile_image, social_provider_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := s.db.QueryRow(ctx, query,
		user.ID, user.Name, strings.ToLower(user.Email), password, user.Role, user.ProfileImage, social,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return apperror.NewConflictError("Email already exists", nil)
		}
		return apperror.NewDatabaseError("failed to create user", err)
	}
	return nil
}

// FindByEmail retrieves an account by email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.db.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return user, nil
}

// FindByID retrieves an account by its identifier.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return user, nil
}

// UpdatePassword overwrites the stored password hash for an email.
func (s *UserStore) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password = $1, updated_at = now() WHERE email = $2`,
		hashedPassword, strings.ToLower(email),
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("User not found", nil)
	}
	return nil
}

// UpdateProfile overwrites the display name and profile image reference.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, profileImage string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET name = $1, profile_image = $2, updated_at = now() WHERE id = $3`,
		name, profileImage, id,
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("User not found", nil)
	}
	return nil
}
