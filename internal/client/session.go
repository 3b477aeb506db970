package client

import (
	"context"
	"sync"

	"github.com/K-nass/task-management/internal/users"
)

// API is the subset of Client a Session needs.
type API interface {
	Register(ctx context.Context, reg Registration) (*users.Profile, error)
	Login(ctx context.Context, creds Credentials) (*users.Profile, error)
	Me(ctx context.Context) (*users.Profile, error)
	Logout(ctx context.Context) error
}

// Session mirrors "am I logged in, and as whom" for a front end. Create one
// per front end and pass it down explicitly.
type Session struct {
	api API

	hydrateMu sync.Mutex

	mu         sync.Mutex
	user       *users.Profile
	loading    bool
	hydrated   bool
	hydrateErr error
}

// NewSession returns a Session in the loading state.
func NewSession(api API) *Session {
	return &Session{api: api, loading: true}
}

// Hydrate asks the server who the session cookie belongs to. Only the first
// call reaches the server; later calls return its outcome. A 401 resolves the
// session as anonymous without an error.
func (s *Session) Hydrate(ctx context.Context) error {
	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	s.mu.Lock()
	done, prev := s.hydrated, s.hydrateErr
	s.mu.Unlock()
	if done {
		return prev
	}

	user, err := s.api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		// Login or Register resolved the session while Me was in flight.
		return s.hydrateErr
	}
	s.hydrated = true
	s.loading = false
	if err != nil {
		s.user = nil
		if !IsUnauthorized(err) {
			s.hydrateErr = err
		}
		return s.hydrateErr
	}
	s.user = user
	return nil
}

// Login authenticates and records the returned user.
func (s *Session) Login(ctx context.Context, creds Credentials) (*users.Profile, error) {
	user, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	s.set(user)
	return user, nil
}

// Register creates an account and records the returned user.
func (s *Session) Register(ctx context.Context, reg Registration) (*users.Profile, error) {
	user, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.set(user)
	return user, nil
}

// Logout calls the server and clears the user even if the call fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.set(nil)
	return err
}

// User returns a copy of the current user, or nil when anonymous.
func (s *Session) User() *users.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether hydration has not resolved yet.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Authenticated reports whether a user is present.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Session) set(user *users.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.loading = false
	s.hydrated = true
	s.hydrateErr = nil
}
