package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flint/internal/domain/user"
	"flint/internal/infrastructure/snaptrade"
	"flint/internal/shared/auth"
)

type mockUserRepo struct {
	users  map[int64]*user.User
	byMail map[string]*user.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*user.User), byMail: make(map[string]*user.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	if _, ok := m.byMail[email]; ok {
		return nil, user.ErrEmailTaken
	}
	m.nextID++
	u := &user.User{ID: m.nextID, Email: email, PasswordHash: passwordHash, SubscriptionTier: user.TierFree}
	m.users[u.ID] = u
	m.byMail[email] = u
	return u, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := m.byMail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) SetSnapTradeCredentials(ctx context.Context, id int64, snapUserID, secret string) error {
	return nil
}

func (m *mockUserRepo) ClearSnapTradeCredentials(ctx context.Context, id int64) error {
	return nil
}

func (m *mockUserRepo) SetSubscriptionTier(ctx context.Context, id int64, tier string) error {
	return nil
}

func newAuthHandler() (*AuthHandler, *mockUserRepo) {
	repo := newMockUserRepo()
	var broker snaptrade.ClientInterface
	service := user.NewService(repo, broker, auth.NewJWT("test-secret"))
	return NewAuthHandler(service), repo
}

func TestHandleRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"email":"new@example.com","password":"password123"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid Email",
			body:           `{"email":"not-an-email","password":"password123"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Weak Password",
			body:           `{"email":"new@example.com","password":"short"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newAuthHandler()

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.HandleRegister(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}

			if tt.expectedStatus == http.StatusCreated {
				cookie := rr.Header().Get("Set-Cookie")
				if !strings.Contains(cookie, "access_token=") {
					t.Errorf("expected access_token cookie, got %q", cookie)
				}
				if !strings.Contains(cookie, "HttpOnly") {
					t.Errorf("expected HttpOnly cookie, got %q", cookie)
				}
			}
		})
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	handler, _ := newAuthHandler()

	body := `{"email":"dup@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want %d", rr.Code, http.StatusCreated)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rr = httptest.NewRecorder()
	handler.HandleRegister(rr, req)
	if rr.Code != http.StatusConflict {
		t.Errorf("second register status = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestHandleLogin(t *testing.T) {
	handler, _ := newAuthHandler()

	register := `{"email":"login@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(register))
	handler.HandleRegister(httptest.NewRecorder(), req)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"email":"login@example.com","password":"password123"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong Password",
			body:           `{"email":"login@example.com","password":"wrong-password"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown Email",
			body:           `{"email":"nobody@example.com","password":"password123"}`,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.HandleLogin(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleLogout(t *testing.T) {
	handler, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	cookie := rr.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "access_token=") || !strings.Contains(cookie, "Max-Age=0") {
		t.Errorf("expected expired access_token cookie, got %q", cookie)
	}
}

func TestHandleMe(t *testing.T) {
	handler, repo := newAuthHandler()
	u, _ := repo.Create(context.Background(), "me@example.com", "hash")

	req := authedRequest(http.MethodGet, "/api/users/me", u.ID)
	rr := httptest.NewRecorder()
	handler.HandleMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "me@example.com") {
		t.Errorf("response missing email: %s", rr.Body.String())
	}
}

func TestHandleMe_Unauthenticated(t *testing.T) {
	handler, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rr := httptest.NewRecorder()
	handler.HandleMe(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
