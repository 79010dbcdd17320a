/**
 * @description
 * This file contains transaction PIN verification. The submitted PIN is
 * compared against the customer's stored bcrypt hash; bcrypt's comparison is
 * constant-time over the hash, so the check does not leak timing information.
 * Failed attempts feed the per-customer lockout counter in the database.
 *
 * @dependencies
 * - golang.org/x/crypto/bcrypt: Hash comparison.
 */

package app

import (
	"errors"
	"time"

	"github.com/swiftsend/transfer-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrPINLocked is returned while the customer's PIN is locked out after
	// too many consecutive failures.
	ErrPINLocked = errors.New("transaction pin is temporarily locked")
	// ErrPINAttemptsExhausted is returned when a pending transaction has used
	// up its PIN retry budget and was discarded.
	ErrPINAttemptsExhausted = errors.New("pin attempts exhausted for this transaction")
)

// checkPIN reports whether the submitted PIN matches the stored bcrypt hash.
func checkPIN(pinHash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)) == nil
}

// pinLocked reports whether the credential is inside an active lockout window.
func pinLocked(credential *domain.CustomerSecurityCredential, now time.Time) bool {
	return credential.LockedUntil != nil && now.Before(*credential.LockedUntil)
}
