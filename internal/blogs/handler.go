package blogs

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-cms/meridian-cms/internal/auth"
	"github.com/meridian-cms/meridian-cms/internal/platform/httpx"
	"github.com/meridian-cms/meridian-cms/internal/shared"
)

// Handler wires blog endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers blog routes. Reads run under optional auth so
// anonymous traffic is served, just with drafts filtered out; writes
// sit behind permission guards.
func (h *Handler) MountRoutes(r chi.Router, guard auth.Guard) {
	r.With(guard.OptionalAuth()).Get("/", h.handleList)
	r.With(guard.OptionalAuth()).Get("/{slug}", h.handleGet)
	r.With(guard.RequirePermission(auth.PermBlogCreate)).Post("/", h.handleCreate)
	r.With(guard.RequirePermission(auth.PermBlogUpdate)).Put("/{id}", h.handleUpdate)
	r.With(guard.RequirePermission(auth.PermBlogPublish)).Post("/{id}/publish", h.handlePublish)
	r.With(guard.RequirePermission(auth.PermBlogDelete)).Delete("/{id}", h.handleDelete)
}

// canSeeDrafts widens the result set for principals allowed to work on
// unpublished content.
func canSeeDrafts(r *http.Request) bool {
	principal := auth.PrincipalFromContext(r.Context())
	return auth.HasPermission(principal, auth.PermBlogUpdate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r, 100)
	result, err := h.service.List(r.Context(), page, perPage, canSeeDrafts(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "slug"), canSeeDrafts(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

type createRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Excerpt string `json:"excerpt" validate:"max=500"`
	Body    string `json:"body" validate:"required"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		auth.RespondError(w, auth.ErrAuthenticationRequired)
		return
	}
	post, err := h.service.Create(r.Context(), CreateInput{
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Body:     req.Body,
		AuthorID: principal.ID,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	post, err := h.service.Update(r.Context(), id, UpdateInput{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Body:    req.Body,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	post, err := h.service.Publish(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid post id")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "post not found")
	case errors.Is(err, ErrSlugTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "a post with this slug already exists")
	default:
		h.logger.Error("blogs handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
