package blog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/entreflow-go/apperror"
	"github.com/user/entreflow-go/auth"
)

// Recorder receives domain counter events. A nil Recorder disables them.
type Recorder interface {
	ObserveBlogMutation(operation string)
}

// Handler exposes the posting endpoints.
type Handler struct {
	service  *BlogService
	recorder Recorder
}

func NewHandler(service *BlogService, recorder Recorder) *Handler {
	return &Handler{service: service, recorder: recorder}
}

func (h *Handler) observeMutation(operation string) {
	if h.recorder != nil {
		h.recorder.ObserveBlogMutation(operation)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		auth.WriteError(w, apperror.NewBadRequestError("invalid request body", err))
		return false
	}
	return true
}

func sessionClaims(w http.ResponseWriter, r *http.Request) (*auth.SessionClaims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		auth.WriteError(w, apperror.NewAuthError("Not Authenticated", nil))
		return nil, false
	}
	return claims, true
}

// Create godoc
// @Summary Create a post
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBlogRequest true "New post"
// @Success 201 {object} map[string]interface{}
// @Router /blog/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := sessionClaims(w, r)
	if !ok {
		return
	}

	var req CreateBlogRequest
	if !decodeBody(w, r, &req) {
		return
	}

	b, err := h.service.Create(r.Context(), claims, req)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	h.observeMutation("create")
	auth.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":   true,
		"blog": b,
	})
}

// Update godoc
// @Summary Edit a post the session user owns
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateBlogRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Router /blog/update [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := sessionClaims(w, r)
	if !ok {
		return
	}

	var req UpdateBlogRequest
	if !decodeBody(w, r, &req) {
		return
	}

	b, err := h.service.Update(r.Context(), claims, req)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	h.observeMutation("update")
	auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"blog": b,
	})
}

// Delete godoc
// @Summary Delete a post by id
// @Tags blog
// @Produce json
// @Param id path string true "Blog id"
// @Success 200 {object} map[string]interface{}
// @Router /blog/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		auth.WriteError(w, err)
		return
	}

	h.observeMutation("delete")
	auth.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Comment godoc
// @Summary Append a comment to a post
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog id"
// @Param request body CommentRequest true "Comment text"
// @Success 201 {object} map[string]interface{}
// @Router /blog/{id}/comment [post]
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	claims, ok := sessionClaims(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.service.AddComment(r.Context(), claims, chi.URLParam(r, "id"), req)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	h.observeMutation("comment")
	auth.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":      true,
		"comment": c,
	})
}

// List godoc
// @Summary List every post with authors and comments populated
// @Tags blog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /blog/get [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.List(r.Context())
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"blogs": blogs,
	})
}
