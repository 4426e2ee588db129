package users

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

// Handler wires user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user management routes behind permission guards.
func (h *Handler) MountRoutes(r chi.Router, guard auth.Guard) {
	r.With(guard.RequirePermission(auth.PermUserRead)).Get("/", h.handleList)
	r.With(guard.RequirePermission(auth.PermUserUpdate)).Patch("/{id}/role", h.handleChangeRole)
	r.With(guard.RequirePermission(auth.PermUserUpdate)).Patch("/{id}/status", h.handleChangeStatus)
}

type userItem struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FullName  string `json:"full_name,omitempty"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	LastLogin string `json:"last_login,omitempty"`
}

type listResponse struct {
	Items      []userItem        `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r, 100)
	pagination := shared.NewPagination(page, perPage, 0)

	list, total, err := h.service.List(r.Context(), pagination.Offset(), perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	items := make([]userItem, 0, len(list))
	for _, u := range list {
		item := userItem{
			ID:       u.ID,
			Email:    u.Email,
			Username: u.Username,
			FullName: u.FullName,
			Role:     string(u.Role),
			Status:   string(u.Status),
		}
		if u.LastLoginAt != nil {
			item.LastLogin = u.LastLoginAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		items = append(items, item)
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Items:      items,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req changeRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "unknown role")
		return
	}
	if err := h.service.ChangeRole(r.Context(), id, role); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req changeStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.ChangeStatus(r.Context(), id, auth.Status(req.Status)); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
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
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
		return
	}
	h.logger.Error("users handler", slog.Any("error", err))
	httpx.RespondError(w, err)
}
