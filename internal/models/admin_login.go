package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminLoginAttempt is one row of the admin login audit log.
type AdminLoginAttempt struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Success     bool      `json:"success"`
	FailReason  string    `json:"fail_reason,omitempty"` // empty on success
	AttemptedAt time.Time `json:"attempted_at"`
}
