package accesscode

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/td-studios/auth-api/internal/domain"
	"github.com/td-studios/auth-api/internal/pkg/validate"
)

// Service is the admin-facing access code management interface.
type Service interface {
	List(ctx context.Context) ([]domain.AccessCode, error)
	Create(ctx context.Context, req domain.CreateAccessCodeRequest) (*domain.AccessCode, error)
	Update(ctx context.Context, code string, req domain.UpdateAccessCodeRequest) (*domain.AccessCode, error)
	Delete(ctx context.Context, code string) error
	Stats(ctx context.Context) (*domain.SecurityStats, error)
}

type codeStore interface {
	Put(ctx context.Context, ac *domain.AccessCode) error
	Get(ctx context.Context, code string) (*domain.AccessCode, error)
	List(ctx context.Context) ([]domain.AccessCode, error)
	Update(ctx context.Context, code string, fields map[string]any) error
	Delete(ctx context.Context, code string) error
}

type attemptStore interface {
	CountsSince(ctx context.Context, since time.Time) (total, failed int, err error)
}

type service struct {
	codes    codeStore
	attempts attemptStore
}

type ServiceDeps struct {
	CodeRepo    codeStore
	AttemptRepo attemptStore
}

func NewService(deps ServiceDeps) Service {
	return &service{codes: deps.CodeRepo, attempts: deps.AttemptRepo}
}

// List returns every code, newest first.
func (s *service) List(ctx context.Context) ([]domain.AccessCode, error) {
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(codes, func(i, j int) bool {
		return codes[i].CreatedAt.After(codes[j].CreatedAt)
	})
	return codes, nil
}

func (s *service) Create(ctx context.Context, req domain.CreateAccessCodeRequest) (*domain.AccessCode, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := validate.Var(code, "required,min=4"); err != nil {
		return nil, fmt.Errorf("access code must be at least 4 characters: %w", domain.ErrBadRequest)
	}
	if req.MaxUses != nil {
		if err := validate.Var(*req.MaxUses, "min=1"); err != nil {
			return nil, fmt.Errorf("max_uses must be at least 1: %w", domain.ErrBadRequest)
		}
	}
	now := time.Now().UTC()
	ac := &domain.AccessCode{
		Code:        code,
		Description: req.Description,
		MaxUses:     req.MaxUses,
		IsActive:    true,
		CreatedAt:   now,
	}
	if req.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("expires_at must be an RFC 3339 timestamp: %w", domain.ErrBadRequest)
		}
		ac.ExpiresAt = &t
	}
	if err := s.codes.Put(ctx, ac); err != nil {
		return nil, err
	}
	return ac, nil
}

// Update applies a partial update. A present-but-null expires_at clears the
// expiry; an absent one leaves it untouched.
func (s *service) Update(ctx context.Context, code string, req domain.UpdateAccessCodeRequest) (*domain.AccessCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	fields := map[string]any{}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.MaxUses != nil {
		if err := validate.Var(*req.MaxUses, "min=1"); err != nil {
			return nil, fmt.Errorf("max_uses must be at least 1: %w", domain.ErrBadRequest)
		}
		fields["max_uses"] = *req.MaxUses
	}
	if req.ExpiresAt != nil {
		if *req.ExpiresAt == "" {
			fields["expires_at"] = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
			if err != nil {
				return nil, fmt.Errorf("expires_at must be an RFC 3339 timestamp: %w", domain.ErrBadRequest)
			}
			fields["expires_at"] = t
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.codes.Update(ctx, code, fields); err != nil {
		return nil, err
	}
	return s.codes.Get(ctx, code)
}

func (s *service) Delete(ctx context.Context, code string) error {
	return s.codes.Delete(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// Stats summarizes the last 24 hours of login activity plus code inventory.
func (s *service) Stats(ctx context.Context) (*domain.SecurityStats, error) {
	const window = 24 * time.Hour
	total, failed, err := s.attempts.CountsSince(ctx, time.Now().UTC().Add(-window))
	if err != nil {
		return nil, err
	}
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	active := 0
	for _, c := range codes {
		if c.Usable(now) {
			active++
		}
	}
	return &domain.SecurityStats{
		WindowHours:      int(window.Hours()),
		TotalAttempts:    total,
		FailedAttempts:   failed,
		SuccessfulLogins: total - failed,
		ActiveCodes:      active,
		TotalCodes:       len(codes),
	}, nil
}
