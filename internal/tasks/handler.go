package tasks

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/K-nass/task-management/internal/platform/httpx"
	"github.com/K-nass/task-management/internal/shared"
)

// Handler exposes the task endpoints. Every route expects the caller's user
// id in the request context.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers task routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, "list tasks", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validation(MsgTitleRequired))
		return
	}
	task, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.respondError(w, r, "create task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, shared.Validation("Invalid task data"))
		return
	}
	task, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		h.respondError(w, r, "update task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.respondError(w, r, "delete task", err)
		return
	}
	httpx.Message(w, http.StatusOK, MsgTaskRemoved)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.Unauthenticated("Not authorized, no token"))
	}
	return userID, ok
}

// A malformed id can never match a row.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.NotFound(MsgTaskNotFound))
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
