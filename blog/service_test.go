package blog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/entreflow-go/apperror"
	"github.com/user/entreflow-go/auth"
)

type fakeUploader struct {
	url  string
	err  error
	seen []string
}

func (u *fakeUploader) Upload(ctx context.Context, image string) (string, error) {
	u.seen = append(u.seen, image)
	return u.url, u.err
}

type blogFixture struct {
	service  *BlogService
	mock     pgxmock.PgxPoolIface
	uploader *fakeUploader
}

func newBlogFixture(t *testing.T) *blogFixture {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	uploader := &fakeUploader{url: "https://assets.example.com/uploads/post.png"}
	return &blogFixture{
		service:  NewBlogService(NewBlogStore(mock), uploader),
		mock:     mock,
		uploader: uploader,
	}
}

func claimsFor(userID uuid.UUID) *auth.SessionClaims {
	return &auth.SessionClaims{UserID: userID.String(), Name: "Alice"}
}

func blogRow(b *Blog) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "short_description", "description", "image", "user_id", "created_at", "updated_at",
	}).AddRow(b.ID, b.Title, b.ShortDescription, b.Description, b.Image, b.UserID, b.CreatedAt, b.UpdatedAt)
}

func TestCreateUploadsImageBeforeInsert(t *testing.T) {
	f := newBlogFixture(t)
	userID := uuid.New()

	now := time.Now()
	f.mock.ExpectQuery("INSERT INTO blogs").
		WithArgs(pgxmock.AnyArg(), "Shipping v2", "What changed", "Long form text", f.uploader.url, userID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	b, err := f.service.Create(context.Background(), claimsFor(userID), CreateBlogRequest{
		Title:            "Shipping v2",
		ShortDescription: "What changed",
		Description:      "Long form text",
		Image:            "data:image/png;base64,aGk=",
	})
	require.NoError(t, err)
	assert.Equal(t, f.uploader.url, b.Image)
	assert.Equal(t, []string{"data:image/png;base64,aGk="}, f.uploader.seen)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateRequiresEveryField(t *testing.T) {
	f := newBlogFixture(t)

	_, err := f.service.Create(context.Background(), claimsFor(uuid.New()), CreateBlogRequest{
		Title: "No body",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
	assert.Empty(t, f.uploader.seen)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateUploadFailure(t *testing.T) {
	f := newBlogFixture(t)
	f.uploader.err = errors.New("bucket unreachable")

	_, err := f.service.Create(context.Background(), claimsFor(uuid.New()), CreateBlogRequest{
		Title:            "Shipping v2",
		ShortDescription: "What changed",
		Description:      "Long form text",
		Image:            "data:image/png;base64,aGk=",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "Image upload failed")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateUnknownBlog(t *testing.T) {
	f := newBlogFixture(t)
	blogID := uuid.New()

	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(blogID).
		WillReturnError(pgx.ErrNoRows)

	title := "New title"
	_, err := f.service.Update(context.Background(), claimsFor(uuid.New()), UpdateBlogRequest{
		BlogID: blogID.String(),
		Title:  &title,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.EqualError(t, err, "Blog not found")
}

func TestUpdateByNonOwner(t *testing.T) {
	f := newBlogFixture(t)
	owner := uuid.New()
	stranger := uuid.New()

	existing := &Blog{ID: uuid.New(), Title: "Theirs", UserID: owner}
	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(existing.ID).
		WillReturnRows(blogRow(existing))

	title := "Mine now"
	_, err := f.service.Update(context.Background(), claimsFor(stranger), UpdateBlogRequest{
		BlogID: existing.ID.String(),
		Title:  &title,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.EqualError(t, err, "You are not authorized to edit this blog")
}

func TestUpdateWithNoFields(t *testing.T) {
	f := newBlogFixture(t)
	owner := uuid.New()

	existing := &Blog{ID: uuid.New(), Title: "Mine", UserID: owner}
	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(existing.ID).
		WillReturnRows(blogRow(existing))

	_, err := f.service.Update(context.Background(), claimsFor(owner), UpdateBlogRequest{
		BlogID: existing.ID.String(),
	})
	require.Error(t, err)
	assert.EqualError(t, err, "Nothing to update")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateTitleOnly(t *testing.T) {
	f := newBlogFixture(t)
	owner := uuid.New()

	existing := &Blog{ID: uuid.New(), Title: "Old title", UserID: owner}
	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(existing.ID).
		WillReturnRows(blogRow(existing))
	f.mock.ExpectExec("UPDATE blogs SET title").
		WithArgs("New title", existing.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated := &Blog{ID: existing.ID, Title: "New title", UserID: owner}
	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(existing.ID).
		WillReturnRows(blogRow(updated))

	title := "New title"
	got, err := f.service.Update(context.Background(), claimsFor(owner), UpdateBlogRequest{
		BlogID: existing.ID.String(),
		Title:  &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	assert.Empty(t, f.uploader.seen)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateImageGoesThroughUploader(t *testing.T) {
	f := newBlogFixture(t)
	owner := uuid.New()

	existing := &Blog{ID: uuid.New(), Title: "Mine", UserID: owner}
	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(existing.ID).
		WillReturnRows(blogRow(existing))
	f.mock.ExpectExec("UPDATE blogs SET image").
		WithArgs(f.uploader.url, existing.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(existing.ID).
		WillReturnRows(blogRow(existing))

	image := "data:image/png;base64,aGk="
	_, err := f.service.Update(context.Background(), claimsFor(owner), UpdateBlogRequest{
		BlogID: existing.ID.String(),
		Image:  &image,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{image}, f.uploader.seen)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeleteIsIdempotentOnlyOnce(t *testing.T) {
	f := newBlogFixture(t)
	blogID := uuid.New()

	f.mock.ExpectExec("DELETE FROM blogs").
		WithArgs(blogID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, f.service.Delete(context.Background(), blogID.String()))

	f.mock.ExpectExec("DELETE FROM blogs").
		WithArgs(blogID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	err := f.service.Delete(context.Background(), blogID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.EqualError(t, err, "Blog not found")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeleteMalformedID(t *testing.T) {
	f := newBlogFixture(t)

	err := f.service.Delete(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddCommentToMissingBlog(t *testing.T) {
	f := newBlogFixture(t)
	blogID := uuid.New()

	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(blogID).
		WillReturnError(pgx.ErrNoRows)

	_, err := f.service.AddComment(context.Background(), claimsFor(uuid.New()), blogID.String(), CommentRequest{Text: "hi"})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddCommentStoresTextAsSubmitted(t *testing.T) {
	f := newBlogFixture(t)
	owner := uuid.New()
	commenter := uuid.New()

	existing := &Blog{ID: uuid.New(), Title: "Mine", UserID: owner}
	f.mock.ExpectQuery("FROM blogs WHERE id").
		WithArgs(existing.ID).
		WillReturnRows(blogRow(existing))
	f.mock.ExpectQuery("INSERT INTO comments").
		WithArgs(pgxmock.AnyArg(), existing.ID, commenter, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	c, err := f.service.AddComment(context.Background(), claimsFor(commenter), existing.ID.String(), CommentRequest{Text: ""})
	require.NoError(t, err)
	assert.Equal(t, "", c.Text)
	assert.Equal(t, commenter, c.UserID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListServesFromCacheUntilInvalidated(t *testing.T) {
	f := newBlogFixture(t)
	owner := uuid.New()
	blogID := uuid.New()
	now := time.Now()

	expectFeedQueries := func() {
		f.mock.ExpectQuery("FROM blogs b").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "title", "short_description", "description", "image", "user_id",
				"created_at", "updated_at", "name", "profile_image",
			}).AddRow(blogID, "Shipping v2", "short", "long", "img.png", owner, now, now, "Alice", "/default/default.png"))
		f.mock.ExpectQuery("FROM comments c").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "blog_id", "user_id", "text", "created_at", "name", "profile_image",
			}).AddRow(uuid.New(), blogID, owner, "first", now, "Alice", "/default/default.png"))
	}

	expectFeedQueries()
	first, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Alice", first[0].Author.Name)
	require.Len(t, first[0].Comments, 1)

	// Second read is served from the snapshot: no queries expected.
	second, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	// A mutation drops the snapshot and the next read rebuilds it.
	f.mock.ExpectExec("DELETE FROM blogs").
		WithArgs(blogID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, f.service.Delete(context.Background(), blogID.String()))

	expectFeedQueries()
	_, err = f.service.List(context.Background())
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
