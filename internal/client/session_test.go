package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-nass/task-management/internal/users"
)

type stubAPI struct {
	meCalls   atomic.Int32
	meUser    *users.Profile
	meErr     error
	loginErr  error
	logoutErr error
}

func (s *stubAPI) Register(ctx context.Context, reg Registration) (*users.Profile, error) {
	return &users.Profile{ID: 2, Name: reg.Name, Email: reg.Email}, nil
}

func (s *stubAPI) Login(ctx context.Context, creds Credentials) (*users.Profile, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &users.Profile{ID: 1, Name: "Ann", Email: creds.Email}, nil
}

func (s *stubAPI) Me(ctx context.Context) (*users.Profile, error) {
	s.meCalls.Add(1)
	if s.meErr != nil {
		return nil, s.meErr
	}
	return s.meUser, nil
}

func (s *stubAPI) Logout(ctx context.Context) error {
	return s.logoutErr
}

func TestSessionHydrateOnce(t *testing.T) {
	api := &stubAPI{meUser: &users.Profile{ID: 1, Name: "Ann", Email: "ann@x.com"}}
	s := NewSession(api)
	assert.True(t, s.Loading())
	assert.Equal(t, DecisionLoading, Guard(s))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Hydrate(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.meCalls.Load())
	assert.False(t, s.Loading())
	assert.True(t, s.Authenticated())
	assert.Equal(t, "Ann", s.User().Name)
	assert.Equal(t, DecisionProceed, Guard(s))
}

func TestSessionHydrateAnonymous(t *testing.T) {
	api := &stubAPI{meErr: &APIError{Status: http.StatusUnauthorized, Message: "Not authorized, no token"}}
	s := NewSession(api)

	require.NoError(t, s.Hydrate(context.Background()))
	assert.False(t, s.Loading())
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
	assert.Equal(t, DecisionRedirectLogin, Guard(s))
}

func TestSessionHydrateRemembersFailure(t *testing.T) {
	api := &stubAPI{meErr: errors.New("dial tcp: connection refused")}
	s := NewSession(api)

	err := s.Hydrate(context.Background())
	require.Error(t, err)
	api.meErr = nil
	api.meUser = &users.Profile{ID: 1}
	assert.Equal(t, err, s.Hydrate(context.Background()))
	assert.Equal(t, int32(1), api.meCalls.Load())
	assert.Equal(t, DecisionRedirectLogin, Guard(s))
}

func TestSessionLoginAndLogout(t *testing.T) {
	api := &stubAPI{logoutErr: errors.New("network down")}
	s := NewSession(api)

	_, err := s.Login(context.Background(), Credentials{Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, DecisionProceed, Guard(s))

	// Hydrating after login keeps the logged-in user.
	require.NoError(t, s.Hydrate(context.Background()))
	assert.Zero(t, api.meCalls.Load())

	err = s.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, s.Authenticated())
	assert.Equal(t, DecisionRedirectLogin, Guard(s))
}

func TestSessionLoginFailureKeepsState(t *testing.T) {
	api := &stubAPI{loginErr: &APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	s := NewSession(api)
	require.NoError(t, s.Hydrate(context.Background()))

	_, err := s.Login(context.Background(), Credentials{Email: "ann@x.com", Password: "bad"})
	require.Error(t, err)
	assert.False(t, s.Authenticated())

	reg, err := s.Register(context.Background(), Registration{Name: "Bob", Email: "bob@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, s.User().ID)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "loading", DecisionLoading.String())
	assert.Equal(t, "redirect_login", DecisionRedirectLogin.String())
	assert.Equal(t, "proceed", DecisionProceed.String())
}
