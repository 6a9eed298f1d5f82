package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionToken gates the storefront-facing purchase endpoints. Distinct from
// buyer-account credentials.
type SessionToken struct {
	ID        uuid.UUID `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *SessionToken) IsValid() bool {
	return t.IsActive && time.Now().UTC().Before(t.ExpiresAt)
}
