package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	f := newServiceFixture(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	rec := httptest.NewRecorder()
	f.service.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Not Authenticated", body["error"])
}

func TestMiddlewareRejectsGarbageToken(t *testing.T) {
	f := newServiceFixture(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached with a bad token")
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	f.service.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewarePlacesClaimsInContext(t *testing.T) {
	f := newServiceFixture(t)

	user := &User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "alice@test.com",
		Role:         RoleUser,
		ProfileImage: DefaultProfileImage,
	}
	token, err := f.service.IssueSession(user)
	require.NoError(t, err)

	var seen *SessionClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		seen = claims
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.service.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID.String(), seen.UserID)
	assert.Equal(t, user.Email, seen.Email)
}

func TestSignupHandlerCreatesAccount(t *testing.T) {
	f := newServiceFixture(t)
	handler := NewHandler(f.service, nil)

	now := time.Now()
	f.mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "Alice", "alice@test.com", pgxmock.AnyArg(), RoleUser, DefaultProfileImage, nil).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	body := `{"name":"Alice","email":"alice@test.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["ok"])

	user, ok := envelope["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@test.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSignupHandlerRejectsMalformedBody(t *testing.T) {
	f := newServiceFixture(t)
	handler := NewHandler(f.service, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["ok"])
}

func TestVerifyForgotHandler(t *testing.T) {
	f := newServiceFixture(t)
	handler := NewHandler(f.service, nil)

	code, err := f.service.codes.Issue("alice@test.com")
	require.NoError(t, err)

	body := `{"email":"alice@test.com","code":` + strconv.Itoa(code) + `}`
	req := httptest.NewRequest(http.MethodPost, "/auth/verify-forgot", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.VerifyForgot(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeEnvelope(t, rec)["ok"])

	wrong := `{"email":"alice@test.com","code":1}`
	req = httptest.NewRequest(http.MethodPost, "/auth/verify-forgot", strings.NewReader(wrong))
	rec = httptest.NewRecorder()
	handler.VerifyForgot(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Enter correct code", decodeEnvelope(t, rec)["error"])
}

func TestGoogleLoginHandlerReturnsConsentURL(t *testing.T) {
	f := newServiceFixture(t)
	handler := NewHandler(f.service, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login?state=xyz", nil)
	rec := httptest.NewRecorder()
	handler.GoogleLogin(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "https://example.com/consent?state=xyz", envelope["url"])
}
