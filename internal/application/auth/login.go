package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/td-studios/auth-api/internal/domain"
	"github.com/td-studios/auth-api/internal/pkg/validate"
)

func (s *service) Login(ctx context.Context, req domain.LoginRequest, clientIP string) (*domain.UserAccount, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Pin == "" {
		return nil, fmt.Errorf("username and PIN are required: %w", domain.ErrBadRequest)
	}
	if !validate.Pin(req.Pin) {
		return nil, fmt.Errorf("invalid PIN format: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()

	// Sliding-window guard runs before the user record is even fetched, so an
	// attacker hammering a nonexistent username is throttled all the same.
	if err := s.checkRateLimit(ctx, username, clientIP, now); err != nil {
		return nil, err
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		// Only a missing record takes the auth-failure branch; a store outage
		// must surface as an internal error, not a 401.
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.recordAttempt(ctx, username, clientIP, false, "user not found")
		// Generic message: never reveal whether the username or PIN was wrong.
		return nil, fmt.Errorf("invalid username or PIN: %w", domain.ErrUnauthorized)
	}

	if !u.IsActive {
		s.recordAttempt(ctx, username, clientIP, false, "account inactive")
		return nil, fmt.Errorf("account is inactive: %w", domain.ErrForbidden)
	}

	// Lockout takes priority over PIN verification once the record is loaded:
	// a locked account rejects even the correct PIN.
	if until, locked := u.LockedUntil(now); locked {
		s.recordAttempt(ctx, username, clientIP, false, "account locked")
		return nil, &domain.RetryAfterError{
			Reason:     domain.ErrLocked,
			Message:    "account temporarily locked due to too many failed attempts",
			RetryAfter: until.Sub(now),
		}
	}

	if !s.hasher.Verify(req.Pin, u.Secret()) {
		s.recordAttempt(ctx, username, clientIP, false, "invalid PIN")
		return nil, s.registerFailure(ctx, u, now)
	}

	if u.Secret().IsLegacy() {
		s.upgradeHash(ctx, u, req.Pin)
	}

	s.recordAttempt(ctx, username, clientIP, true, "")
	if err := s.users.ResetLoginState(ctx, u.UserID, now); err != nil {
		return nil, err
	}
	u.FailedLoginAttempts = 0
	u.AccountLockedUntil = nil
	u.LastLoginAt = &now
	return u, nil
}

// checkRateLimit counts recent failures for this username+origin pair. The
// retry hint is the time until the oldest qualifying failure leaves the window.
func (s *service) checkRateLimit(ctx context.Context, username, ip string, now time.Time) error {
	failures, err := s.attempts.FailuresSince(ctx, username, ip, now.Add(-s.cfg.RateLimitWindow))
	if err != nil {
		return err
	}
	if len(failures) < s.cfg.MaxFailedAttempts {
		return nil
	}
	retry := s.cfg.RateLimitWindow
	if len(failures) > 0 {
		retry = failures[0].CreatedAt.Add(s.cfg.RateLimitWindow).Sub(now)
	}
	return &domain.RetryAfterError{
		Reason:     domain.ErrRateLimited,
		Message:    "too many failed login attempts, please try again later",
		RetryAfter: retry,
	}
}

// registerFailure bumps the per-account counter (atomically, at the store) and
// locks the account when the cap is reached. The returned error distinguishes
// a fresh lock (423) from a plain mismatch with a remaining-attempts hint (401).
func (s *service) registerFailure(ctx context.Context, u *domain.UserAccount, now time.Time) error {
	count, err := s.users.IncrementFailedAttempts(ctx, u.UserID)
	if err != nil {
		return err
	}
	if count >= s.cfg.MaxFailedAttempts {
		until := now.Add(s.cfg.LockoutDuration)
		if err := s.users.SetLockedUntil(ctx, u.UserID, until); err != nil {
			return err
		}
		return &domain.RetryAfterError{
			Reason:     domain.ErrLocked,
			Message:    "account temporarily locked due to too many failed attempts",
			RetryAfter: s.cfg.LockoutDuration,
		}
	}
	return &domain.PinMismatchError{AttemptsRemaining: s.cfg.MaxFailedAttempts - count}
}

// upgradeHash opportunistically rewrites a legacy digest as a salted hash.
// Best-effort: a persistence failure must not fail the enclosing login.
func (s *service) upgradeHash(ctx context.Context, u *domain.UserAccount, pin string) {
	secret, err := s.hasher.Hash(pin)
	if err != nil {
		slog.Warn("pin hash upgrade failed", "user_id", u.UserID, "err", err)
		return
	}
	if err := s.users.UpgradePinHash(ctx, u.UserID, secret); err != nil {
		slog.Warn("pin hash upgrade not persisted", "user_id", u.UserID, "err", err)
		return
	}
	u.PinHash = secret.Digest
	u.PinHashScheme = secret.Scheme
}

// recordAttempt appends to the ledger. Best-effort: the response is already
// determined and a ledger write failure must not change it.
func (s *service) recordAttempt(ctx context.Context, username, ip string, success bool, msg string) {
	a := &domain.LoginAttempt{
		Username:     username,
		IPAddress:    ip,
		Success:      success,
		ErrorMessage: msg,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.attempts.Put(ctx, a); err != nil {
		slog.Warn("could not record login attempt", "username", username, "err", err)
	}
}
