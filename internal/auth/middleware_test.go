package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-nass/task-management/internal/shared"
)

func guardedRecorder(t *testing.T, issuer *TokenIssuer, req *http.Request) (*httptest.ResponseRecorder, int64) {
	t.Helper()
	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := shared.UserIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	NewGuard(issuer, nil).Require(next).ServeHTTP(rec, req)
	return rec, seen
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestGuardNoToken(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)

	rec, seen := guardedRecorder(t, issuer, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgNoToken, messageOf(t, rec))
	assert.Zero(t, seen)
}

func TestGuardInvalidToken(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	rec, seen := guardedRecorder(t, issuer, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgTokenFailed, messageOf(t, rec))
	assert.Zero(t, seen)
}

func TestGuardExpiredToken(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := issuer.Issue(3)
	require.NoError(t, err)
	issuer.now = time.Now

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	rec, _ := guardedRecorder(t, issuer, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgTokenFailed, messageOf(t, rec))
}

func TestGuardValidToken(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	tok, err := issuer.Issue(9)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	rec, seen := guardedRecorder(t, issuer, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(9), seen)
}

func TestGuardIgnoresAuthorizationHeader(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	tok, err := issuer.Issue(9)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec, _ := guardedRecorder(t, issuer, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "abc", CookieOptions{Secure: true, MaxAge: 30 * 24 * time.Hour})
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 30*24*60*60, c.MaxAge)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, CookieOptions{})
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.False(t, cookies[0].Secure)
}
