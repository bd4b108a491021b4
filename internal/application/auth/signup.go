package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/td-studios/auth-api/internal/domain"
	"github.com/td-studios/auth-api/internal/pkg/id"
	"github.com/td-studios/auth-api/internal/pkg/validate"
)

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.UserAccount, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Pin == "" {
		return nil, fmt.Errorf("username and PIN are required: %w", domain.ErrBadRequest)
	}
	if !validate.Username(username) {
		return nil, fmt.Errorf("username must be 3-20 characters of letters, numbers, and underscores: %w", domain.ErrBadRequest)
	}
	if !validate.Pin(req.Pin) {
		return nil, fmt.Errorf("PIN must be exactly 4 digits: %w", domain.ErrBadRequest)
	}

	phone := trimmed(req.Phone)
	email := trimmed(req.Email)
	instagram := trimmed(req.InstagramHandle)
	if phone == nil && email == nil && instagram == nil {
		return nil, fmt.Errorf("at least one contact method (phone, email, or Instagram) is required: %w", domain.ErrBadRequest)
	}
	if email != nil {
		lower := strings.ToLower(*email)
		email = &lower
		if !validate.Email(*email) {
			return nil, fmt.Errorf("invalid email address: %w", domain.ErrBadRequest)
		}
	}
	if phone != nil && !validate.Phone(*phone) {
		return nil, fmt.Errorf("phone number must have at least 10 digits: %w", domain.ErrBadRequest)
	}
	if instagram != nil {
		h := validate.NormalizeInstagram(*instagram)
		if !validate.Instagram(h) {
			return nil, fmt.Errorf("Instagram handle can only contain letters, numbers, dots, and underscores: %w", domain.ErrBadRequest)
		}
		instagram = &h
	}

	if err := s.redeemAccessCode(ctx, req.AccessCode); err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, username, phone, email, instagram); err != nil {
		return nil, err
	}

	secret, err := s.hasher.Hash(req.Pin)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.UserAccount{
		UserID:          id.New(),
		Username:        username,
		PinHash:         secret.Digest,
		PinHashScheme:   secret.Scheme,
		Phone:           phone,
		Email:           email,
		InstagramHandle: instagram,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// redeemAccessCode enforces the access-code gate. Absence of a code is
// tolerated unless AccessCodeRequired is set. A present code must exist, be
// active, be unexpired, and be under its use cap; the counter increment is
// atomic at the store so a racing signup cannot redeem the same last use.
func (s *service) redeemAccessCode(ctx context.Context, raw *string) error {
	code := trimmed(raw)
	if code == nil {
		if s.cfg.AccessCodeRequired {
			return fmt.Errorf("an access code is required to sign up: %w", domain.ErrForbidden)
		}
		return nil
	}
	normalized := strings.ToUpper(*code)
	ac, err := s.codes.Get(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("invalid access code: %w", domain.ErrForbidden)
		}
		return err
	}
	now := time.Now().UTC()
	if !ac.IsActive {
		return fmt.Errorf("invalid access code: %w", domain.ErrForbidden)
	}
	if ac.ExpiresAt != nil && !ac.ExpiresAt.After(now) {
		return fmt.Errorf("access code has expired: %w", domain.ErrForbidden)
	}
	if ac.MaxUses != nil && ac.CurrentUses >= *ac.MaxUses {
		return fmt.Errorf("access code has reached its usage limit: %w", domain.ErrForbidden)
	}
	return s.codes.ConsumeUse(ctx, normalized)
}

// checkConflicts classifies unique-field collisions up front for a fast,
// friendly rejection. The transactional insert in the store remains the
// backstop for signups racing past these reads.
func (s *service) checkConflicts(ctx context.Context, username string, phone, email, instagram *string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return fmt.Errorf("username already taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if phone != nil {
		if _, err := s.users.GetByPhone(ctx, *phone); err == nil {
			return fmt.Errorf("phone number already registered: %w", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	if email != nil {
		if _, err := s.users.GetByEmail(ctx, *email); err == nil {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	if instagram != nil {
		if _, err := s.users.GetByInstagram(ctx, *instagram); err == nil {
			return fmt.Errorf("Instagram handle already registered: %w", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return nil
}

// trimmed returns a pointer to the trimmed string, or nil when absent/empty.
func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
