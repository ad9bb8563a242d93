package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

type fakeSessionRepo struct {
	users map[string]*entities.User
}

func (r *fakeSessionRepo) GetUserByTokenHash(ctx context.Context, tokenHash string) (*entities.User, error) {
	user, ok := r.users[tokenHash]
	if !ok {
		return nil, apperrors.NewUnauthorizedError("session not found")
	}
	return user, nil
}

func TestAuthMiddleware(t *testing.T) {
	repo := &fakeSessionRepo{users: map[string]*entities.User{
		HashToken("valid-token"): {ID: "user-1", Email: "crew@example.com"},
	}}

	var captured *entities.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(repo)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/meetings", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.ID)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	repo := &fakeSessionRepo{users: map[string]*entities.User{}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})
	handler := AuthMiddleware(repo)(next)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"unknown token", "Bearer bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/meetings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Unauthorized")
		})
	}
}
