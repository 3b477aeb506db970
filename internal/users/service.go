package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/K-nass/task-management/internal/shared"
)

// Client-facing messages for credential validation.
const (
	MsgNameRequired     = "Please add a name"
	MsgInvalidEmail     = "Please add a valid email"
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgPasswordTooLong  = "Password must be at most 72 bytes"
	MsgUserExists       = "User already exists"
)

type newUser struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6,max=72"`
}

type newPassword struct {
	Password string `validate:"min=6,max=72"`
}

// Service owns account creation and password verification.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create validates and stores a new account, hashing the password first.
func (s *Service) Create(ctx context.Context, name, email, password string) (*User, error) {
	input := newUser{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, translate(err)
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, shared.Validation(MsgUserExists)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("users: lookup email: %w", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, hashError(err)
	}

	user, err := s.repo.Create(ctx, User{Name: input.Name, Email: input.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, shared.Validation(MsgUserExists)
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return user, nil
}

// Verify reports whether the supplied plaintext matches the user's password.
func (s *Service) Verify(user *User, plain string) bool {
	if user == nil {
		return false
	}
	return CheckPassword(user.PasswordHash, plain)
}

// SetPassword re-hashes and stores a new password. It is the only way a
// password changes after registration.
func (s *Service) SetPassword(ctx context.Context, id int64, plain string) error {
	if err := s.validate.Struct(newPassword{Password: plain}); err != nil {
		return translate(err)
	}
	hash, err := HashPassword(plain)
	if err != nil {
		return hashError(err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("User not found")
		}
		return fmt.Errorf("users: update password: %w", err)
	}
	return nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail loads a user by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// Emails compare case-insensitively; accounts are stored lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// bcrypt counts bytes, the validator counts runes.
func hashError(err error) error {
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return shared.Validation(MsgPasswordTooLong)
	}
	return fmt.Errorf("users: hash password: %w", err)
}

func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return shared.Validation("Invalid user data")
	}
	fe := fieldErrs[0]
	switch fe.Field() {
	case "Name":
		return shared.Validation(MsgNameRequired)
	case "Email":
		return shared.Validation(MsgInvalidEmail)
	case "Password":
		if fe.Tag() == "max" {
			return shared.Validation(MsgPasswordTooLong)
		}
		return shared.Validation(MsgPasswordTooShort)
	}
	return shared.Validation("Invalid user data")
}
