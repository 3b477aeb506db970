package tasks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-nass/task-management/internal/shared"
)

const testUserHeader = "X-Test-User"

// withTestUser stands in for the session guard.
func withTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(testUserHeader); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			r = r.WithContext(shared.ContextWithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestRouter(repo *mockRepository) http.Handler {
	r := chi.NewRouter()
	r.Use(withTestUser)
	r.Route("/tasks", NewHandler(nil, NewService(repo, nil)).MountRoutes)
	return r
}

func send(t *testing.T, h http.Handler, user int64, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user > 0 {
		req.Header.Set(testUserHeader, strconv.FormatInt(user, 10))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestHandlerCreateAndList(t *testing.T) {
	h := newTestRouter(newMockRepository())

	rec := send(t, h, ann, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = send(t, h, ann, http.MethodPost, "/tasks", `{"title":"T1","user_id":99}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "T1", created.Title)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, ann, created.UserID, "owner comes from the session, not the payload")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"id", "title", "description", "status", "user_id", "created_at", "updated_at"} {
		assert.Contains(t, raw, key)
	}

	rec = send(t, h, ann, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = send(t, h, bob, http.MethodGet, "/tasks", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandlerCreateValidation(t *testing.T) {
	h := newTestRouter(newMockRepository())

	for _, body := range []string{`{}`, `{"title":""}`, `{"title":`, ``} {
		rec := send(t, h, ann, http.MethodPost, "/tasks", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, MsgTitleRequired, messageOf(t, rec))
	}

	rec := send(t, h, ann, http.MethodPost, "/tasks", `{"title":"T1","status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidStatus, messageOf(t, rec))
}

func TestHandlerUpdate(t *testing.T) {
	repo := newMockRepository()
	h := newTestRouter(repo)
	rec := send(t, h, ann, http.MethodPost, "/tasks", `{"title":"T1","description":"2%"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/tasks/" + strconv.FormatInt(created.ID, 10)

	rec = send(t, h, ann, http.MethodPut, path, `{"status":"done","user_id":2,"id":77}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, StatusDone, updated.Status)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, ann, updated.UserID)
	assert.Equal(t, "2%", *updated.Description)

	rec = send(t, h, bob, http.MethodPut, path, `{"title":"stolen"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgNotAuthorized, messageOf(t, rec))
	stored, _ := repo.get(created.ID)
	assert.Equal(t, "T1", stored.Title)

	rec = send(t, h, ann, http.MethodPut, "/tasks/999", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgTaskNotFound, messageOf(t, rec))

	rec = send(t, h, ann, http.MethodPut, "/tasks/abc", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, h, ann, http.MethodPut, path, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	repo := newMockRepository()
	h := newTestRouter(repo)
	rec := send(t, h, ann, http.MethodPost, "/tasks", `{"title":"T1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/tasks/" + strconv.FormatInt(created.ID, 10)

	rec = send(t, h, bob, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgNotAuthorized, messageOf(t, rec))

	rec = send(t, h, ann, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MsgTaskRemoved, messageOf(t, rec))

	rec = send(t, h, ann, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRequiresIdentity(t *testing.T) {
	h := newTestRouter(newMockRepository())
	rec := send(t, h, 0, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
