package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/entreflow-go/apperror"
)

// WriteJSON writes an envelope response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteError maps an error to its HTTP status and writes the failure
// envelope.
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("Internal server error", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, apperror.NewBadRequestError("invalid request body", err))
		return false
	}
	return true
}

// Recorder receives domain counter events. A nil Recorder disables them.
type Recorder interface {
	ObserveSignup()
	ObserveLogin()
}

// Handler exposes the authentication endpoints.
type Handler struct {
	service  *AuthService
	recorder Recorder
}

func NewHandler(service *AuthService, recorder Recorder) *Handler {
	return &Handler{service: service, recorder: recorder}
}

// Signup godoc
// @Summary Create a credential account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "New account"
// @Success 201 {object} map[string]interface{}
// @Router /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.ObserveSignup()
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":   true,
		"user": user,
	})
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, user, err := h.service.Login(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.ObserveLogin()
	}
	WriteJSON(w, http.StatusOK, SessionResponse{OK: true, Token: token, User: user})
}

// Check godoc
// @Summary Resolve the current session against live storage
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /auth/check [get]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.NewAuthError("Not Authenticated", nil))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), claims)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"user": user,
	})
}

// Forgot godoc
// @Summary Issue a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Router /auth/forgot [post]
func (h *Handler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotRequest
	if !decodeBody(w, r, &req) {
		return
	}

	code, err := h.service.RequestResetCode(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"code": code,
	})
}

// VerifyForgot godoc
// @Summary Check a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyForgotRequest true "Email and code"
// @Success 200 {object} map[string]interface{}
// @Router /auth/verify-forgot [post]
func (h *Handler) VerifyForgot(w http.ResponseWriter, r *http.Request) {
	var req VerifyForgotRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.VerifyResetCode(req); err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Reset godoc
// @Summary Overwrite the account password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetRequest true "New password"
// @Success 200 {object} map[string]interface{}
// @Router /auth/reset [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// UpdateProfile godoc
// @Summary Replace the profile image
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Image data URI or URL"
// @Success 200 {object} map[string]interface{}
// @Router /auth/update-profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.NewAuthError("Not Authenticated", nil))
		return
	}

	var req UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.UpdateProfileImage(r.Context(), claims, req); err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// GoogleLogin godoc
// @Summary Return the Google consent screen URL
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/google/login [get]
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":  true,
		"url": h.service.GoogleLoginURL(state),
	})
}

// GoogleCallback godoc
// @Summary Complete the Google login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleCallbackRequest true "Authorization code"
// @Success 200 {object} SessionResponse
// @Router /auth/google/callback [post]
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req GoogleCallbackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, user, err := h.service.GoogleCallback(r.Context(), req.Code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.ObserveLogin()
	}
	WriteJSON(w, http.StatusOK, SessionResponse{OK: true, Token: token, User: user})
}
