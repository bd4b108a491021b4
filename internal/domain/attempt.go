package domain

import "time"

// LoginAttempt is one row of the append-only attempt ledger.
// PK: scope (normalized username + "#" + client IP), SK: attempt_id (ULID, so
// rows sort by creation time and range queries bound the sliding window).
type LoginAttempt struct {
	Scope        string    `json:"-" dynamodbav:"scope"`
	AttemptID    string    `json:"id" dynamodbav:"attempt_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	IPAddress    string    `json:"ip_address" dynamodbav:"ip_address"`
	Success      bool      `json:"success" dynamodbav:"success"`
	ErrorMessage string    `json:"error_message,omitempty" dynamodbav:"error_message"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	TTL          int64     `json:"-" dynamodbav:"ttl"` // DynamoDB TTL (Unix seconds)
}

// AttemptScope builds the ledger partition key for a username+origin pair.
func AttemptScope(username, ip string) string {
	return username + "#" + ip
}

// SecurityStats is the aggregate summary served to the admin interface.
type SecurityStats struct {
	WindowHours      int `json:"window_hours"`
	TotalAttempts    int `json:"total_attempts"`
	FailedAttempts   int `json:"failed_attempts"`
	SuccessfulLogins int `json:"successful_logins"`
	ActiveCodes      int `json:"active_codes"`
	TotalCodes       int `json:"total_codes"`
}
