package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents an audit log entry for tracking important actions.
// UserID is uuid.Nil when the actor is unknown (failed login for an
// unregistered email).
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	UserID    uuid.UUID      `db:"user_id" json:"userId"`
	Action    string         `db:"action" json:"action"`
	Category  string         `db:"category" json:"category"`
	Details   map[string]any `db:"details" json:"details"`
	IP        string         `db:"ip" json:"ip,omitempty"`
	UserAgent string         `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// Audit action categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryProfile = "profile"
)

// Audit actions
const (
	AuditActionRegister      = "register"
	AuditActionLogin         = "login"
	AuditActionLoginFailed   = "login_failed"
	AuditActionLogout        = "logout"
	AuditActionProfileUpdate = "profile_update"
)
