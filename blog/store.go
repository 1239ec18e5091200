package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/entreflow-go/apperror"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BlogStore persists posts and their comments.
type BlogStore struct {
	db DB
}

// NewBlogStore creates a new BlogStore.
func NewBlogStore(db DB) *BlogStore {
	return &BlogStore{db: db}
}

// Create inserts a new post.
func (s *BlogStore) Create(ctx context.Context, b *Blog) error {
	query := `INSERT INTO blogs (id, title, short_description, description, image, user_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	err := s.db.QueryRow(ctx, query,
		b.ID, b.Title, b.ShortDescription, b.Description, b.Image, b.UserID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return apperror.NewDatabaseError("failed to create blog", err)
	}
	return nil
}

// GetByID retrieves a post without its author or comments populated.
func (s *BlogStore) GetByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := `SELECT id, title, short_description, description, image, user_id, created_at, updated_at
	          FROM blogs WHERE id = $1`
	var b Blog
	err := s.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.ShortDescription, &b.Description, &b.Image, &b.UserID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Blog not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get blog", err)
	}
	return &b, nil
}

// Update overwrites the columns whose pointers are non-nil. At least one
// field must be set; callers enforce that before reaching the store.
func (s *BlogStore) Update(ctx context.Context, id uuid.UUID, title, shortDescription, description, image *string) error {
	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 5)

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendSet("title", title)
	appendSet("short_description", shortDescription)
	appendSet("description", description)
	appendSet("image", image)

	if len(setClauses) == 0 {
		return apperror.NewBadRequestError("Nothing to update", nil)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE blogs SET %s, updated_at = now() WHERE id = $%d`,
		strings.Join(setClauses, ", "), len(args))

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewDatabaseError("failed to update blog", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Blog not found", nil)
	}
	return nil
}

// Delete removes a post. Comments go with it through the foreign key
// cascade.
func (s *BlogStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete blog", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Blog not found", nil)
	}
	return nil
}

// AddComment appends a comment to a post.
func (s *BlogStore) AddComment(ctx context.Context, c *Comment) error {
	query := `INSERT INTO comments (id, blog_id, user_id, text)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`
	err := s.db.QueryRow(ctx, query, c.ID, c.BlogID, c.UserID, c.Text).Scan(&c.CreatedAt)
	if err != nil {
		return apperror.NewDatabaseError("failed to add comment", err)
	}
	return nil
}

// ListWithAuthors returns every post newest first, with the author's public
// fields and the comment threads populated the way the feed renders them.
func (s *BlogStore) ListWithAuthors(ctx context.Context) ([]*Blog, error) {
	blogQuery := `SELECT b.id, b.title, b.short_description, b.description, b.image, b.user_id,
	                     b.created_at, b.updated_at, u.name, u.profile_image
	              FROM blogs b
	              JOIN users u ON u.id = b.user_id
	              ORDER BY b.created_at DESC`
	rows, err := s.db.Query(ctx, blogQuery)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list blogs", err)
	}
	defer rows.Close()

	blogs := make([]*Blog, 0)
	byID := make(map[uuid.UUID]*Blog)
	for rows.Next() {
		var b Blog
		var author Author
		err := rows.Scan(
			&b.ID, &b.Title, &b.ShortDescription, &b.Description, &b.Image, &b.UserID,
			&b.CreatedAt, &b.UpdatedAt, &author.Name, &author.ProfileImage,
		)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan blog", err)
		}
		b.Author = &author
		b.Comments = make([]Comment, 0)
		blogs = append(blogs, &b)
		byID[b.ID] = &b
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list blogs", err)
	}

	commentQuery := `SELECT c.id, c.blog_id, c.user_id, c.text, c.created_at, u.name, u.profile_image
	                 FROM comments c
	                 JOIN users u ON u.id = c.user_id
	                 ORDER BY c.created_at ASC`
	commentRows, err := s.db.Query(ctx, commentQuery)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c Comment
		var author Author
		err := commentRows.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Text, &c.CreatedAt, &author.Name, &author.ProfileImage)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan comment", err)
		}
		c.Author = &author
		if b, ok := byID[c.BlogID]; ok {
			b.Comments = append(b.Comments, c)
		}
	}
	if err := commentRows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}

	return blogs, nil
}
