package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/K-nass/task-management/internal/observability"
	"github.com/K-nass/task-management/internal/shared"
	"github.com/K-nass/task-management/internal/users"
)

// LoginObserver is told the outcome of every login attempt.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// Service wraps authentication business rules.
type Service struct {
	users    *users.Service
	tokens   *TokenIssuer
	limiter  *LoginLimiter
	observer LoginObserver
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService constructs a new Service. limiter may be nil.
func NewService(userService *users.Service, tokens *TokenIssuer, limiter *LoginLimiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    userService,
		tokens:   tokens,
		limiter:  limiter,
		logger:   logger,
		validate: validator.New(),
	}
}

// WithObserver attaches o to the service and returns it.
func (s *Service) WithObserver(o LoginObserver) *Service {
	s.observer = o
	return s
}

// Register creates the account and issues its first session token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.User, string, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, "", shared.Validation(MsgMissingFields)
	}
	user, err := s.users.Create(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return user, token, nil
}

// Login validates email/password credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*users.User, string, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, "", shared.Validation(MsgMissingFields)
	}
	if err := s.limiter.Allow(ctx, req.Email); err != nil {
		if errors.Is(err, shared.ErrTooManyAttempts) {
			s.observe(observability.LoginBlocked)
			return nil, "", err
		}
		// Redis outages must not lock everyone out.
		s.logger.Warn("check login attempts", slog.Any("error", err))
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", s.rejectLogin(ctx, req.Email)
	}
	if !s.users.Verify(user, req.Password) {
		return nil, "", s.rejectLogin(ctx, req.Email)
	}

	if err := s.limiter.Reset(ctx, req.Email); err != nil {
		s.logger.Warn("reset login attempts", slog.Any("error", err))
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.observe(observability.LoginSucceeded)
	return user, token, nil
}

// Me loads the account behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID int64) (*users.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Unauthenticated(MsgUserGone)
		}
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	return user, nil
}

func (s *Service) rejectLogin(ctx context.Context, email string) error {
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.logger.Warn("record failed login", slog.Any("error", err))
	}
	s.observe(observability.LoginFailed)
	return shared.Unauthenticated(MsgInvalidCredentials)
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveLogin(outcome)
	}
}
