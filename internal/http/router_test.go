package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmonkez12/accounts-api/internal/auth"
	"github.com/redmonkez12/accounts-api/internal/config"
	"github.com/redmonkez12/accounts-api/internal/logging"
	"github.com/redmonkez12/accounts-api/internal/password"
	"github.com/redmonkez12/accounts-api/internal/user"
)

// memoryStore is an in-process user.Store.
type memoryStore struct {
	mu     sync.Mutex
	users  map[int64]*user.User
	nextID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[int64]*user.User{}, nextID: 1}
}

func (m *memoryStore) Create(_ context.Context, u *user.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return 0, user.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return 0, user.ErrDuplicateEmail
		}
	}
	cp := *u
	cp.ID = m.nextID
	m.nextID++
	m.users[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memoryStore) FindByIdentifier(_ context.Context, identifier string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == identifier || u.Email == strings.ToLower(identifier) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "prod", TrustedOrigins: []string{"http://localhost:3000"}},
	}
	logger := logging.Discard()
	hasher := password.NewWithCost(bcrypt.MinCost)

	tokens, err := auth.NewJWTService("0123456789abcdef0123456789abcdef", "accounts-api", time.Hour)
	require.NoError(t, err)

	users := user.NewService(newMemoryStore(), hasher, nil, logger)
	authService, err := auth.NewService(users, hasher, tokens, logger)
	require.NoError(t, err)

	return NewRouter(cfg, Handlers{
		Auth:           auth.NewHandler(authService),
		Users:          user.NewHandler(users),
		AuthMiddleware: auth.NewMiddleware(tokens),
	}, logger)
}

func send(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, username string) {
	t.Helper()
	body := `{"username":"` + username + `","email":"` + username + `@example.com","password":"password1","first_name":"First","last_name":"Last"}`
	rec := send(t, h, http.MethodPost, "/auth", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func signIn(t *testing.T, h http.Handler, identifier string) string {
	t.Helper()
	rec := send(t, h, http.MethodPost, "/auth/signin", "", `{"identifier":"`+identifier+`","password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp auth.SignInResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Token
}

func TestRouter_AccountLifecycle(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "alice")
	register(t, router, "bob")
	token := signIn(t, router, "ALICE@example.com")

	rec := send(t, router, http.MethodGet, "/users/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	rec = send(t, router, http.MethodGet, "/users/2", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, router, http.MethodPut, "/users/1", token,
		`{"username":"alice","email":"alice@example.com","password":"password2","first_name":"Alice","last_name":"Liddell"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, router, http.MethodDelete, "/users/1", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, router, http.MethodGet, "/users/1", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "alice")

	rec := send(t, router, http.MethodPost, "/auth", "",
		`{"username":"alice","email":"other@example.com","password":"password1","first_name":"A","last_name":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "USERNAME_ALREADY_EXISTS")
}

func TestRouter_GuardStatuses(t *testing.T) {
	router := newTestRouter(t)

	rec := send(t, router, http.MethodGet, "/users/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(t, router, http.MethodGet, "/users/1", "garbage", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_PublicCreate(t *testing.T) {
	router := newTestRouter(t)

	rec := send(t, router, http.MethodPost, "/users", "",
		`{"username":"carol","email":"carol@example.com","password":"password1","first_name":"Carol","last_name":"C","social_info":{"company":"Acme"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp user.CreateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.ID)
}

func TestRouter_HealthMetricsAndHeaders(t *testing.T) {
	router := newTestRouter(t)

	rec := send(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = send(t, router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, router, http.MethodGet, "/swagger/index.html", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "swagger is dev-only")
}
