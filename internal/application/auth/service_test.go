package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/td-studios/auth-api/internal/config"
	"github.com/td-studios/auth-api/internal/domain"
	"github.com/td-studios/auth-api/internal/pkg/pinhash"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.UserAccount) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.UserAccount); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.UserAccount); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.UserAccount, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.UserAccount); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByInstagram(ctx context.Context, handle string) (*domain.UserAccount, error) {
	args := m.Called(ctx, handle)
	if u, _ := args.Get(0).(*domain.UserAccount); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) IncrementFailedAttempts(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *mockUserStore) SetLockedUntil(ctx context.Context, userID string, until time.Time) error {
	return m.Called(ctx, userID, until).Error(0)
}
func (m *mockUserStore) ResetLoginState(ctx context.Context, userID string, lastLogin time.Time) error {
	return m.Called(ctx, userID, lastLogin).Error(0)
}
func (m *mockUserStore) UpgradePinHash(ctx context.Context, userID string, secret domain.PinSecret) error {
	return m.Called(ctx, userID, secret).Error(0)
}

type mockCodeStore struct{ mock.Mock }

func (m *mockCodeStore) Get(ctx context.Context, code string) (*domain.AccessCode, error) {
	args := m.Called(ctx, code)
	if c, _ := args.Get(0).(*domain.AccessCode); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCodeStore) ConsumeUse(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type mockAttemptStore struct{ mock.Mock }

func (m *mockAttemptStore) Put(ctx context.Context, a *domain.LoginAttempt) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAttemptStore) FailuresSince(ctx context.Context, username, ip string, since time.Time) ([]domain.LoginAttempt, error) {
	args := m.Called(ctx, username, ip, since)
	if l, _ := args.Get(0).([]domain.LoginAttempt); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		RateLimitWindow:   15 * time.Minute,
		MaxFailedAttempts: 5,
		LockoutDuration:   30 * time.Minute,
		BcryptCost:        bcrypt.MinCost,
	}
}

func newSvc(us *mockUserStore, cs *mockCodeStore, as *mockAttemptStore, cfg config.AuthConfig) Service {
	return NewService(ServiceDeps{
		UserRepo:    us,
		CodeRepo:    cs,
		AttemptRepo: as,
		Hasher:      pinhash.New(cfg.BcryptCost),
		Config:      cfg,
	})
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
