package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-nass/task-management/internal/shared"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", shared.Validation("Please provide a title"), http.StatusBadRequest},
		{"unauthenticated", shared.Unauthenticated("Invalid credentials"), http.StatusUnauthorized},
		{"forbidden reuses 401", shared.Forbidden("Not authorized"), http.StatusUnauthorized},
		{"not found", fmt.Errorf("wrap: %w", shared.NotFound("Task not found")), http.StatusNotFound},
		{"limiter", shared.TooManyAttempts("slow down"), http.StatusTooManyRequests},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestRespondErrorPassesMessageThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("relation \"tasks\" does not exist"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body MessageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "relation \"tasks\" does not exist", body.Message)
}
