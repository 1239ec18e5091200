package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("bad input", nil), http.StatusBadRequest},
		{"auth", NewAuthError("not authenticated", nil), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not the owner", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound},
		{"conflict", NewConflictError("duplicate", nil), http.StatusConflict},
		{"upstream", NewUpstreamError("upload failed", nil), http.StatusBadGateway},
		{"database", NewDatabaseError("query failed", nil), http.StatusInternalServerError},
		{"internal", NewInternalError("boom", nil), http.StatusInternalServerError},
		{"bad request", NewBadRequestError("malformed", nil), http.StatusBadRequest},
		{"unknown", NewAppError(UnknownError, "??", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestToResponseHidesUnderlyingError(t *testing.T) {
	cause := errors.New("pq: connection refused on 10.0.0.3")
	resp := NewDatabaseError("something went wrong", cause).ToResponse()

	assert.False(t, resp.OK)
	assert.Equal(t, "something went wrong", resp.Error)
	assert.NotContains(t, resp.Error, "10.0.0.3")
}

func TestErrorIncludesCauseServerSide(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("write failed", cause)

	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestFromErrorUnwrapsWrappedAppError(t *testing.T) {
	inner := NewNotFoundError("blog not found", nil)
	wrapped := fmt.Errorf("loading blog: %w", inner)

	ae, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, NotFoundError, ae.Type)

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("gone", nil)))
	assert.True(t, IsAuthError(NewAuthError("who", nil)))
	assert.True(t, IsForbidden(NewForbiddenError("no", nil)))
	assert.True(t, IsValidationError(NewValidationError("bad", nil)))
	assert.True(t, IsConflict(NewConflictError("dupe", nil)))

	assert.False(t, IsNotFound(NewAuthError("who", nil)))
	assert.False(t, IsConflict(errors.New("plain")))
}
