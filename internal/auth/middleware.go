package auth

import (
	"log/slog"
	"net/http"

	"github.com/K-nass/task-management/internal/platform/httpx"
	"github.com/K-nass/task-management/internal/shared"
)

// Rejection messages returned by Guard.
const (
	MsgNoToken     = "Not authorized, no token"
	MsgTokenFailed = "Not authorized, token failed"
)

// Guard resolves the session cookie into a user id on every request.
type Guard struct {
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(tokens *TokenIssuer, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{tokens: tokens, logger: logger}
}

// Require rejects requests without a valid session token and attaches the
// resolved user id to the context of those it lets through.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			httpx.RespondError(w, shared.Unauthenticated(MsgNoToken))
			return
		}
		userID, err := g.tokens.Parse(raw)
		if err != nil {
			g.logger.Debug("reject session token", slog.String("path", r.URL.Path), slog.Any("error", err))
			httpx.RespondError(w, shared.Unauthenticated(MsgTokenFailed))
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithUserID(r.Context(), userID)))
	})
}
