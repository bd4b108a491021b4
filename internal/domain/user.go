package domain

import "time"

// UserAccount is a username/PIN identity record. Contact fields are optional
// but at least one is required at creation; each is globally unique when set.
type UserAccount struct {
	UserID              string     `json:"id" dynamodbav:"user_id"`
	Username            string     `json:"username" dynamodbav:"username"`
	PinHash             string     `json:"-" dynamodbav:"pin_hash"`
	PinHashScheme       string     `json:"-" dynamodbav:"pin_hash_scheme"`
	Phone               *string    `json:"phone" dynamodbav:"phone,omitempty"`
	Email               *string    `json:"email" dynamodbav:"email,omitempty"`
	InstagramHandle     *string    `json:"instagram_handle" dynamodbav:"instagram_handle,omitempty"`
	IsActive            bool       `json:"is_active" dynamodbav:"is_active"`
	FailedLoginAttempts int        `json:"-" dynamodbav:"failed_login_attempts"`
	AccountLockedUntil  *time.Time `json:"-" dynamodbav:"account_locked_until,omitempty"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

// Secret returns the tagged PIN secret for this record.
func (u *UserAccount) Secret() PinSecret {
	return ParsePinSecret(u.PinHash, u.PinHashScheme)
}

// LockedUntil reports whether the account is locked as of now, and until when.
func (u *UserAccount) LockedUntil(now time.Time) (time.Time, bool) {
	if u.AccountLockedUntil != nil && u.AccountLockedUntil.After(now) {
		return *u.AccountLockedUntil, true
	}
	return time.Time{}, false
}

type SignupRequest struct {
	Username        string  `json:"username"`
	Pin             string  `json:"pin"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	InstagramHandle *string `json:"instagram_handle"`
	AccessCode      *string `json:"access_code"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Pin      string `json:"pin"`
}
