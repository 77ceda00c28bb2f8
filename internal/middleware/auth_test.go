package middleware

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WebUp-555/ecommerce-api/internal/auth"
	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthToken(t *testing.T) *auth.AuthToken {
	key, err := hex.DecodeString("f53ac685bbceebd75043e6be2e06ee07")
	require.NoError(t, err)
	return auth.NewAuthToken(key)
}

func TestAuth_ValidToken_Header(t *testing.T) {
	authToken := newTestAuthToken(t)

	token, err := authToken.CreateToken(&models.TokenPayload{UserID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	var captured *models.TokenPayload
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := AuthPayload(r.Context())
		if ok {
			captured = payload
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/my", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	Auth(authToken)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, uint64(1), captured.UserID)
	assert.Equal(t, models.RoleUser, captured.Role)
}

func TestAuth_ValidToken_Cookie(t *testing.T) {
	authToken := newTestAuthToken(t)

	token, err := authToken.CreateToken(&models.TokenPayload{UserID: 2, Role: models.RoleAdmin})
	require.NoError(t, err)

	var captured *models.TokenPayload
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := AuthPayload(r.Context())
		captured = payload
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/my", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	Auth(authToken)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, uint64(2), captured.UserID)
}

func TestAuth_MissingToken(t *testing.T) {
	authToken := newTestAuthToken(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/my", nil)
	w := httptest.NewRecorder()

	Auth(authToken)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	authToken := newTestAuthToken(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/my", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()

	Auth(authToken)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name           string
		payload        *models.TokenPayload
		wantStatusCode int
	}{
		{
			name:           "admin_passes",
			payload:        &models.TokenPayload{UserID: 1, Role: models.RoleAdmin},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "role_is_trimmed_and_lowercased",
			payload:        &models.TokenPayload{UserID: 1, Role: " Admin "},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "user_forbidden",
			payload:        &models.TokenPayload{UserID: 1, Role: models.RoleUser},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "missing_payload_unauthorized",
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.payload != nil {
				req = req.WithContext(WithAuthPayload(req.Context(), tt.payload))
			}
			w := httptest.NewRecorder()

			AdminOnly(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
		})
	}
}
