package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/td-studios/auth-api/internal/domain"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.UserAccount, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.UserAccount); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) Login(ctx context.Context, req domain.LoginRequest, clientIP string) (*domain.UserAccount, error) {
	args := m.Called(ctx, req, clientIP)
	if u, _ := args.Get(0).(*domain.UserAccount); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func fixtureUser() *domain.UserAccount {
	email := "alice@example.com"
	return &domain.UserAccount{
		UserID:        "user-1",
		Username:      "alice",
		PinHash:       "$2a$12$secretsecretsecretsecret",
		PinHashScheme: domain.SchemeBcrypt,
		Email:         &email,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
}

func doJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSignup_Created(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.Anything).Return(fixtureUser(), nil)
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Signup, `{"username":"alice","pin":"1234","email":"alice@example.com"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotNil(t, env.User)
	assert.Equal(t, "alice", env.User.Username)
	// The stored secret never leaves the server.
	assert.NotContains(t, rec.Body.String(), "pin_hash")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestSignup_BadBody(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Signup, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestSignup_ValidationErrorIs400(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("PIN must be exactly 4 digits: %w", domain.ErrBadRequest))
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Signup, `{"username":"alice","pin":"12345"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "4 digits")
}

func TestSignup_ConflictIs409(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("username already taken: %w", domain.ErrConflict))
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Signup, `{"username":"alice","pin":"1234","email":"a@b.co"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already taken")
}

func TestSignup_AccessCodeRejectionIs403(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("invalid access code: %w", domain.ErrForbidden))
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Signup, `{"username":"alice","pin":"1234","access_code":"X"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(fixtureUser(), nil)
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Login, `{"username":"alice","pin":"1234"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "user-1", env.User.ID)
}

func TestLogin_PassesClientIP(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, "1.2.3.4").Return(fixtureUser(), nil)
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice","pin":"1234"}`))
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertCalled(t, "Login", mock.Anything, mock.Anything, "1.2.3.4")
}

func TestLogin_WrongPinIs401WithAttemptsRemaining(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.PinMismatchError{AttemptsRemaining: 3})
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Login, `{"username":"alice","pin":"9999"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "invalid username or PIN", env.Error)
	require.NotNil(t, env.AttemptsRemaining)
	assert.Equal(t, 3, *env.AttemptsRemaining)
}

func TestLogin_RateLimitedIs429WithRetryAfter(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.RetryAfterError{
			Reason:     domain.ErrRateLimited,
			Message:    "too many failed login attempts, please try again later",
			RetryAfter: 10 * time.Minute,
		})
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Login, `{"username":"alice","pin":"1234"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "600", rec.Header().Get("Retry-After"))
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 600, env.RetryAfterSeconds)
}

func TestLogin_LockedIs423WithRetryAfter(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.RetryAfterError{
			Reason:     domain.ErrLocked,
			Message:    "account temporarily locked due to too many failed attempts",
			RetryAfter: 30 * time.Minute,
		})
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Login, `{"username":"alice","pin":"1234"}`)

	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Equal(t, "1800", rec.Header().Get("Retry-After"))
}

func TestLogin_InactiveIs403(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("account is inactive: %w", domain.ErrForbidden))
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Login, `{"username":"alice","pin":"1234"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin_UnexpectedErrorIs500Generic(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("dynamo: connection refused"))
	h := NewAuthHandler(svc)

	rec := doJSON(t, h.Login, `{"username":"alice","pin":"1234"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Infrastructure details never reach the client.
	assert.NotContains(t, rec.Body.String(), "dynamo")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
