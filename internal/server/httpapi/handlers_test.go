package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memRepo is a minimal in-memory users.Repository.
type memRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func (m *memRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.UserName == u.UserName || e.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	c := *u
	c.ID = "id-" + c.UserName
	c.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.users = append(m.users, &c)
	return &c, nil
}

func (m *memRepo) GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.UserName == login || e.Email == login {
			c := *e
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return common.ErrorNotFound
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{JWTSecret: "k", TokenValidityDuration: time.Hour, BcryptCost: bcrypt.MinCost}
	svc := services.NewUserService(&memRepo{}, nil, nil, cfg, logging.NewNopLogger())
	return NewRouter(svc, logging.NewNopLogger(), time.Second)
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

const signupAna = `{"input":{"userData":{"username":"ana","email":"a@x.io","password":"abcdef"}}}`

func TestSignupLoginMe(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/signup", signupAna, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "id-ana", body["id"])
	assert.Equal(t, "ana", body["username"])
	assert.Equal(t, "a@x.io", body["email"])
	assert.Equal(t, "2024-05-01T12:00:00Z", body["created_at"])
	assert.NotContains(t, body, "password_hash")

	rec = do(t, h, http.MethodPost, "/signup", signupAna, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.MsgAlreadyExists, decodeBody(t, rec)["message"])

	rec = do(t, h, http.MethodPost, "/login", `{"input":{"credentials":{"emailOrUsername":"a@x.io","password":"abcdef"}}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, map[string]any{"id": "id-ana", "username": "ana", "email": "a@x.io"}, body["user"])

	rec = do(t, h, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ana", decodeBody(t, rec)["username"])

	rec = do(t, h, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignup_Validation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"short password", `{"input":{"userData":{"username":"ana","email":"a@x.io","password":"abc"}}}`, common.MsgPasswordTooShort},
		{"missing email", `{"input":{"userData":{"username":"ana","password":"abcdef"}}}`, common.MsgAllFieldsRequired},
		{"password over 72 bytes", `{"input":{"userData":{"username":"ana","email":"a@x.io","password":"` + strings.Repeat("a", 73) + `"}}}`, common.MsgPasswordTooLong},
		{"empty envelope", `{}`, common.MsgAllFieldsRequired},
		{"malformed", `{"input":`, msgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/signup", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["message"])
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/signup", signupAna, nil).Code)

	for _, body := range []string{
		`{"input":{"credentials":{"emailOrUsername":"ana","password":"wrong!"}}}`,
		`{"input":{"credentials":{"emailOrUsername":"ghost","password":"abcdef"}}}`,
	} {
		rec := do(t, h, http.MethodPost, "/login", body, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
	}

	rec := do(t, h, http.MethodPost, "/login", `{"input":{"credentials":{"emailOrUsername":"ana"}}}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.MsgCredentialsRequired, decodeBody(t, rec)["message"])
}

func TestForgotAndResetPassword(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/forgot-password", `{"input":{"email":"ghost@x.io"}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "message": common.MsgResetRequested}, decodeBody(t, rec))

	rec = do(t, h, http.MethodPost, "/forgot-password", `{"input":{}}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/reset-password", `{"input":{"token":"t","password":"abcdef"}}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.MsgInvalidResetToken, decodeBody(t, rec)["message"])
}

func TestHealthAndRouting(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(common.RequestIDHeaderName))

	rec = do(t, h, http.MethodGet, "/health", "", map[string]string{common.RequestIDHeaderName: "req-1"})
	assert.Equal(t, "req-1", rec.Header().Get(common.RequestIDHeaderName))

	rec = do(t, h, http.MethodGet, "/signup", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// stubService returns fixed errors to exercise the status mapping.
type stubService struct {
	err error
}

func (s stubService) Signup(context.Context, string, string, string) (*models.Profile, error) {
	return nil, s.err
}
func (s stubService) Login(context.Context, string, string) (*services.LoginResult, error) {
	return nil, s.err
}
func (s stubService) RequestPasswordReset(context.Context, string) (string, error) { return "", s.err }
func (s stubService) ResetPassword(context.Context, string, string) (string, error) {
	return "", s.err
}
func (s stubService) Profile(context.Context, string) (*models.Profile, error) { return nil, s.err }

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"rate limited", common.NewError(common.ErrRateLimited, common.MsgTooManyAttempts), http.StatusTooManyRequests, common.MsgTooManyAttempts},
		{"upstream passthrough", common.NewError(common.ErrUpstream, "graphql execution failed: x"), http.StatusInternalServerError, "graphql execution failed: x"},
		{"unclassified", context.DeadlineExceeded, http.StatusInternalServerError, "context deadline exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(stubService{err: tt.err}, logging.NewNopLogger(), time.Second)
			rec := do(t, h, http.MethodPost, "/login", `{"input":{"credentials":{"emailOrUsername":"a","password":"b"}}}`, nil)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["message"])
		})
	}
}

type panicService struct{ stubService }

func (panicService) Signup(context.Context, string, string, string) (*models.Profile, error) {
	panic("boom")
}

func TestRescueMiddleware(t *testing.T) {
	h := NewRouter(panicService{}, logging.NewNopLogger(), time.Second)

	rec := do(t, h, http.MethodPost, "/signup", signupAna, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := TimeoutMiddleware(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
