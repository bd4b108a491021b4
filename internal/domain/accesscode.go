package domain

import "time"

// AccessCode is an invite/promo token gating or tracking signups.
// The code string itself (stored upper-cased and trimmed) is the natural key.
type AccessCode struct {
	Code        string     `json:"code" dynamodbav:"code"`
	Description *string    `json:"description" dynamodbav:"description,omitempty"`
	IsActive    bool       `json:"is_active" dynamodbav:"is_active"`
	MaxUses     *int       `json:"max_uses" dynamodbav:"max_uses,omitempty"`
	CurrentUses int        `json:"current_uses" dynamodbav:"current_uses"`
	ExpiresAt   *time.Time `json:"expires_at" dynamodbav:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" dynamodbav:"created_at"`
}

// Usable reports whether the code can still be redeemed: active, not expired,
// and under its use cap.
func (c *AccessCode) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return false
	}
	return true
}

type CreateAccessCodeRequest struct {
	Code        string  `json:"code" validate:"required,min=4"`
	Description *string `json:"description"`
	MaxUses     *int    `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresAt   *string `json:"expires_at"` // RFC 3339
}

type UpdateAccessCodeRequest struct {
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
	MaxUses     *int    `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresAt   *string `json:"expires_at"` // RFC 3339; empty string clears the expiry
}
