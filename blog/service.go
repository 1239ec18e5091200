package blog

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/user/entreflow-go/apperror"
	"github.com/user/entreflow-go/auth"
	"github.com/user/entreflow-go/storage"
)

// BlogService provides the posting operations.
type BlogService struct {
	store    *BlogStore
	uploader storage.Uploader
	cache    listCache
	validate *validator.Validate
}

// NewBlogService wires the service with its collaborators.
func NewBlogService(store *BlogStore, uploader storage.Uploader) *BlogService {
	return &BlogService{
		store:    store,
		uploader: uploader,
		validate: validator.New(),
	}
}

// Create uploads the post image and inserts the post for the session user.
// The upload happens first; if the insert then fails, the uploaded asset is
// orphaned rather than rolled back.
func (s *BlogService) Create(ctx context.Context, claims *auth.SessionClaims, req CreateBlogRequest) (*Blog, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("all fields are required", err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.NewAuthError("Not Authenticated", err)
	}

	imageURL, err := s.uploader.Upload(ctx, req.Image)
	if err != nil {
		return nil, apperror.NewUpstreamError("Image upload failed", err)
	}

	b := &Blog{
		ID:               uuid.New(),
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Image:            imageURL,
		UserID:           userID,
		Comments:         make([]Comment, 0),
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	s.cache.invalidate()
	slog.Info("blog created",
		slog.String("blog_id", b.ID.String()),
		slog.String("user_id", userID.String()),
	)
	return b, nil
}

// Update applies a partial edit after checking the post exists and belongs
// to the session user. With no fields set there is nothing to write and the
// request is rejected.
func (s *BlogService) Update(ctx context.Context, claims *auth.SessionClaims, req UpdateBlogRequest) (*Blog, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("blog id is required", err)
	}

	blogID, err := uuid.Parse(req.BlogID)
	if err != nil {
		return nil, apperror.NewNotFoundError("Blog not found", err)
	}

	existing, err := s.store.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if existing.UserID.String() != claims.UserID {
		return nil, apperror.NewForbiddenError("You are not authorized to edit this blog", nil)
	}

	if req.Title == nil && req.ShortDescription == nil && req.Description == nil && req.Image == nil {
		return nil, apperror.NewBadRequestError("Nothing to update", nil)
	}

	image := req.Image
	if image != nil {
		uploaded, err := s.uploader.Upload(ctx, *image)
		if err != nil {
			return nil, apperror.NewUpstreamError("Image upload failed", err)
		}
		image = &uploaded
	}

	if err := s.store.Update(ctx, blogID, req.Title, req.ShortDescription, req.Description, image); err != nil {
		return nil, err
	}

	s.cache.invalidate()
	return s.store.GetByID(ctx, blogID)
}

// Delete removes a post by id. Any caller that knows the id may delete it;
// the endpoint carries no session and no ownership check.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	blogID, err := uuid.Parse(id)
	if err != nil {
		return apperror.NewNotFoundError("Blog not found", err)
	}

	if err := s.store.Delete(ctx, blogID); err != nil {
		return err
	}

	s.cache.invalidate()
	slog.Info("blog deleted", slog.String("blog_id", blogID.String()))
	return nil
}

// AddComment appends a comment by the session user. The text is stored as
// submitted, empty included.
func (s *BlogService) AddComment(ctx context.Context, claims *auth.SessionClaims, id string, req CommentRequest) (*Comment, error) {
	blogID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NewNotFoundError("Blog not found", err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.NewAuthError("Not Authenticated", err)
	}

	if _, err := s.store.GetByID(ctx, blogID); err != nil {
		return nil, err
	}

	c := &Comment{
		ID:     uuid.New(),
		BlogID: blogID,
		UserID: userID,
		Text:   req.Text,
	}
	if err := s.store.AddComment(ctx, c); err != nil {
		return nil, err
	}

	s.cache.invalidate()
	return c, nil
}

// List returns the populated feed, newest post first, served from the
// snapshot cache when a prior read is still valid.
func (s *BlogService) List(ctx context.Context) ([]*Blog, error) {
	if blogs, ok := s.cache.get(); ok {
		return blogs, nil
	}

	blogs, err := s.store.ListWithAuthors(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.set(blogs)
	return blogs, nil
}
