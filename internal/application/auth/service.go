package auth

import (
	"context"
	"time"

	"github.com/td-studios/auth-api/internal/config"
	"github.com/td-studios/auth-api/internal/domain"
)

// Service implements the username/PIN authentication flows.
type Service interface {
	// Signup validates and creates a new account. The returned record never
	// includes the secret in its JSON form.
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.UserAccount, error)
	// Login verifies credentials for a request originating from clientIP,
	// enforcing the sliding-window rate limit and the account lockout.
	Login(ctx context.Context, req domain.LoginRequest, clientIP string) (*domain.UserAccount, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.UserAccount) error
	GetByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	GetByPhone(ctx context.Context, phone string) (*domain.UserAccount, error)
	GetByInstagram(ctx context.Context, handle string) (*domain.UserAccount, error)
	IncrementFailedAttempts(ctx context.Context, userID string) (int, error)
	SetLockedUntil(ctx context.Context, userID string, until time.Time) error
	ResetLoginState(ctx context.Context, userID string, lastLogin time.Time) error
	UpgradePinHash(ctx context.Context, userID string, secret domain.PinSecret) error
}

type codeStore interface {
	Get(ctx context.Context, code string) (*domain.AccessCode, error)
	ConsumeUse(ctx context.Context, code string) error
}

type attemptStore interface {
	Put(ctx context.Context, a *domain.LoginAttempt) error
	FailuresSince(ctx context.Context, username, ip string, since time.Time) ([]domain.LoginAttempt, error)
}

type pinHasher interface {
	Hash(pin string) (domain.PinSecret, error)
	Verify(pin string, secret domain.PinSecret) bool
}

type service struct {
	users    userStore
	codes    codeStore
	attempts attemptStore
	hasher   pinHasher
	cfg      config.AuthConfig
}

type ServiceDeps struct {
	UserRepo    userStore
	CodeRepo    codeStore
	AttemptRepo attemptStore
	Hasher      pinHasher
	Config      config.AuthConfig
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:    deps.UserRepo,
		codes:    deps.CodeRepo,
		attempts: deps.AttemptRepo,
		hasher:   deps.Hasher,
		cfg:      deps.Config,
	}
}
