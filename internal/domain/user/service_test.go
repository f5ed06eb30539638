package user

import (
	"context"
	"errors"
	"testing"

	"flint/internal/infrastructure/snaptrade"
	"flint/internal/shared/auth"
)

type mockRepository struct {
	users  map[int64]*User
	byMail map[string]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User), byMail: make(map[string]*User)}
}

func (m *mockRepository) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	if _, ok := m.byMail[email]; ok {
		return nil, ErrEmailTaken
	}
	m.nextID++
	u := &User{ID: m.nextID, Email: email, PasswordHash: passwordHash, SubscriptionTier: TierFree}
	m.users[u.ID] = u
	m.byMail[email] = u
	return u, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byMail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRepository) SetSnapTradeCredentials(ctx context.Context, id int64, snapUserID, secret string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.SnapTradeUserID = snapUserID
	u.SnapTradeSecret = secret
	return nil
}

func (m *mockRepository) ClearSnapTradeCredentials(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.SnapTradeUserID = ""
	u.SnapTradeSecret = ""
	return nil
}

func (m *mockRepository) SetSubscriptionTier(ctx context.Context, id int64, tier string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.SubscriptionTier = tier
	return nil
}

type mockBroker struct {
	registered []string
	deleted    []string
	failNext   error
}

func (m *mockBroker) RegisterUser(ctx context.Context, userID string) (*snaptrade.Registration, error) {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}
	m.registered = append(m.registered, userID)
	return &snaptrade.Registration{UserID: userID, UserSecret: "secret-" + userID}, nil
}

func (m *mockBroker) DeleteUser(ctx context.Context, creds snaptrade.Credentials) error {
	m.deleted = append(m.deleted, creds.UserID)
	return nil
}

func (m *mockBroker) LoginPortalURL(ctx context.Context, creds snaptrade.Credentials) (string, error) {
	return "https://app.snaptrade.com/connect", nil
}

func (m *mockBroker) ListAccounts(ctx context.Context, creds snaptrade.Credentials) ([]snaptrade.Account, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBroker) ListPositions(ctx context.Context, creds snaptrade.Credentials, accountID string) ([]snaptrade.Position, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBroker) GetQuotes(ctx context.Context, creds snaptrade.Credentials, accountID string, symbols []string) ([]snaptrade.SymbolQuote, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBroker) PlaceOrder(ctx context.Context, creds snaptrade.Credentials, accountID, symbol, action string, units float64) (*snaptrade.Order, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBroker) GetOrderStatus(ctx context.Context, creds snaptrade.Credentials, accountID, orderID string) (*snaptrade.Order, error) {
	return nil, errors.New("not implemented")
}

func newTestService() (*Service, *mockRepository, *mockBroker) {
	repo := newMockRepository()
	broker := &mockBroker{}
	return NewService(repo, broker, auth.NewJWT("test-secret")), repo, broker
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService()

	u, token, err := svc.Register(context.Background(), " Alice@Example.COM ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized alice@example.com", u.Email)
	}
	if token == "" {
		t.Error("Register returned empty token")
	}

	u2, token2, err := svc.Login(context.Background(), "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if u2.ID != u.ID {
		t.Errorf("Login returned user %d, want %d", u2.ID, u.ID)
	}
	if token2 == "" {
		t.Error("Login returned empty token")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "no at sign", email: "not-an-email", password: "hunter2hunter2", wantErr: ErrInvalidEmail},
		{name: "short password", email: "a@b.com", password: "short", wantErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	if _, _, err := svc.Register(context.Background(), "a@b.com", "hunter2hunter2"); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Register(context.Background(), "a@b.com", "hunter2hunter2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register error = %v, want ErrEmailTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	if _, _, err := svc.Register(context.Background(), "a@b.com", "hunter2hunter2"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(context.Background(), "a@b.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@b.com", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestConnectSnapTradeIsIdempotent(t *testing.T) {
	svc, _, broker := newTestService()

	u, _, err := svc.Register(context.Background(), "a@b.com", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}

	connected, err := svc.ConnectSnapTrade(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ConnectSnapTrade returned error: %v", err)
	}
	if !connected.HasSnapTrade() {
		t.Fatal("user has no brokerage credentials after connect")
	}

	if _, err := svc.ConnectSnapTrade(context.Background(), u.ID); err != nil {
		t.Fatalf("second ConnectSnapTrade returned error: %v", err)
	}
	if len(broker.registered) != 1 {
		t.Errorf("broker registrations = %d, want 1", len(broker.registered))
	}
}

func TestResetSnapTradeReplacesCredentials(t *testing.T) {
	svc, _, broker := newTestService()

	u, _, err := svc.Register(context.Background(), "a@b.com", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}
	first, err := svc.ConnectSnapTrade(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := svc.ResetSnapTrade(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ResetSnapTrade returned error: %v", err)
	}
	if fresh.SnapTradeUserID == first.SnapTradeUserID {
		t.Error("reset kept the old brokerage user id")
	}
	if len(broker.deleted) != 1 || broker.deleted[0] != first.SnapTradeUserID {
		t.Errorf("broker deletions = %v, want old registration removed", broker.deleted)
	}
}

func TestCredentialsRequiresRegistration(t *testing.T) {
	svc, _, _ := newTestService()

	u, _, err := svc.Register(context.Background(), "a@b.com", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Credentials(context.Background(), u.ID); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Credentials error = %v, want ErrNotRegistered", err)
	}

	if _, err := svc.ConnectSnapTrade(context.Background(), u.ID); err != nil {
		t.Fatal(err)
	}
	creds, err := svc.Credentials(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Credentials returned error: %v", err)
	}
	if creds.UserID == "" || creds.UserSecret == "" {
		t.Errorf("creds = %+v, want both fields set", creds)
	}
}

func TestSetSubscriptionTier(t *testing.T) {
	svc, repo, _ := newTestService()

	u, _, err := svc.Register(context.Background(), "a@b.com", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.SetSubscriptionTier(context.Background(), u.ID, "platinum"); !errors.Is(err, ErrInvalidTier) {
		t.Errorf("invalid tier error = %v, want ErrInvalidTier", err)
	}
	if err := svc.SetSubscriptionTier(context.Background(), u.ID, TierPro); err != nil {
		t.Fatalf("SetSubscriptionTier returned error: %v", err)
	}
	if repo.users[u.ID].SubscriptionTier != TierPro {
		t.Errorf("tier = %q, want pro", repo.users[u.ID].SubscriptionTier)
	}
}

func TestStats(t *testing.T) {
	svc, repo, _ := newTestService()

	for _, email := range []string{"a@b.com", "c@d.com", "e@f.com"} {
		if _, _, err := svc.Register(context.Background(), email, "hunter2hunter2"); err != nil {
			t.Fatal(err)
		}
	}
	repo.users[1].SubscriptionTier = TierPro
	repo.users[2].SnapTradeUserID = "snap-2"
	repo.users[2].SnapTradeSecret = "secret"

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalUsers != 3 {
		t.Errorf("total users = %d, want 3", stats.TotalUsers)
	}
	if stats.ProUsers != 1 {
		t.Errorf("pro users = %d, want 1", stats.ProUsers)
	}
	if stats.WithBrokerage != 1 {
		t.Errorf("brokerage users = %d, want 1", stats.WithBrokerage)
	}
}
