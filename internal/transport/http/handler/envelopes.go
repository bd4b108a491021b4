package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/td-studios/auth-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AuthEnvelope wraps signup/login responses.
type AuthEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    *PublicUser `json:"user,omitempty"`
}

// ErrorEnvelope carries auth rejection details. The optional fields surface
// backoff and remaining-attempt hints to the client.
type ErrorEnvelope struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
	AttemptsRemaining *int   `json:"attempts_remaining,omitempty"`
}

// PublicUser is the account projection safe to return to clients. Secrets and
// guard counters never appear here.
type PublicUser struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Phone           *string    `json:"phone,omitempty"`
	Email           *string    `json:"email,omitempty"`
	InstagramHandle *string    `json:"instagram_handle,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

func toPublicUser(u *domain.UserAccount) *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:              u.UserID,
		Username:        u.Username,
		Phone:           u.Phone,
		Email:           u.Email,
		InstagramHandle: u.InstagramHandle,
		CreatedAt:       u.CreatedAt,
		LastLoginAt:     u.LastLoginAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a service error onto the wire: status code, error body, and
// the Retry-After header for rate-limit and lockout rejections.
func httpError(w http.ResponseWriter, err error) {
	var ra *domain.RetryAfterError
	if errors.As(err, &ra) {
		status := http.StatusTooManyRequests
		if errors.Is(err, domain.ErrLocked) {
			status = http.StatusLocked
		}
		w.Header().Set("Retry-After", strconv.Itoa(ra.RetryAfterSeconds()))
		writeJSON(w, status, ErrorEnvelope{
			Error:             ra.Message,
			RetryAfterSeconds: ra.RetryAfterSeconds(),
		})
		return
	}

	var pm *domain.PinMismatchError
	if errors.As(err, &pm) {
		remaining := pm.AttemptsRemaining
		writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{
			Error:             pm.Error(),
			AttemptsRemaining: &remaining,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("unhandled service error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
