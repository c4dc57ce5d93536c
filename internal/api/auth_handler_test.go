package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriontask/orion-api/internal/api/shared"
	"github.com/oriontask/orion-api/internal/config"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/service/auth"
	"github.com/oriontask/orion-api/internal/store"
)

// fakeUserStore is an in-memory UserStore keyed by lowercased email.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := s.users[key]; exists {
		return store.ErrEmailExists
	}
	cp := *user
	s.users[key] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			cp := *user
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newTestAuthHandler(t *testing.T) (*AuthHandler, *fakeUserStore) {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-at-least-32-chars",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	users := newFakeUserStore()
	hasher := auth.NewBcryptVerifier()
	return NewAuthHandler(users, jwtService, hasher, hasher), users
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates a user and returns a token", func(t *testing.T) {
		t.Parallel()
		handler, users := newTestAuthHandler(t)

		rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Email:    "sam@example.com",
			Password: "correct horse battery",
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEqual(t, uuid.Nil, resp.UserID)
		assert.NotEmpty(t, resp.Token)

		stored, err := users.GetByEmail(context.Background(), "sam@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.HashedPassword)
		assert.NotEqual(t, "correct horse battery", stored.HashedPassword)
		assert.Empty(t, stored.Password)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestAuthHandler(t)

		req := RegisterRequest{Email: "sam@example.com", Password: "correct horse battery"}
		rr := postJSON(t, handler.Register, "/api/auth/register", req)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = postJSON(t, handler.Register, "/api/auth/register", req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestAuthHandler(t)

		rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Email:    "sam@example.com",
			Password: "short",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestAuthHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{broken"))
		rr := httptest.NewRecorder()
		handler.Register(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestAuthHandler(t)

		rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Email:    "sam@example.com",
			Password: "correct horse battery",
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "sam@example.com",
			Password: "correct horse battery",
		})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestAuthHandler(t)

		rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Email:    "sam@example.com",
			Password: "correct horse battery",
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		wrongPassword := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "sam@example.com",
			Password: "wrong password here",
		})
		unknownEmail := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "nobody@example.com",
			Password: "correct horse battery",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)

		var a, b shared.ErrorResponse
		require.NoError(t, json.Unmarshal(wrongPassword.Body.Bytes(), &a))
		require.NoError(t, json.Unmarshal(unknownEmail.Body.Bytes(), &b))
		assert.Equal(t, a.Error, b.Error)
	})
}
