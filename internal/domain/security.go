package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomerSecurityCredential stores server-owned transaction PIN security
// metadata: the bcrypt hash plus the failed-attempt lockout state.
type CustomerSecurityCredential struct {
	CustomerID     uuid.UUID  `json:"customer_id"`
	PINHash        string     `json:"-"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
}
