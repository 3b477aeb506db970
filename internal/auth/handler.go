package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/K-nass/task-management/internal/platform/httpx"
	"github.com/K-nass/task-management/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   *Guard
	cookies CookieOptions
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *Guard, cookies CookieOptions) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, cookies: cookies}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require)
		r.Get("/me", h.handleMe)
		r.Post("/logout", h.handleLogout)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validation(MsgMissingFields))
		return
	}
	user, token, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, r, "register", err)
		return
	}
	SetSessionCookie(w, token, h.cookies)
	httpx.JSON(w, http.StatusCreated, user.Profile())
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validation(MsgMissingFields))
		return
	}
	user, token, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, r, "login", err)
		return
	}
	SetSessionCookie(w, token, h.cookies)
	httpx.JSON(w, http.StatusOK, user.Profile())
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserIDFromContext(r.Context())
	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, "me", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.Profile())
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.cookies)
	httpx.Message(w, http.StatusOK, MsgLoggedOut)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
