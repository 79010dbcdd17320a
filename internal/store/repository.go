/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the transfer-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/domain"
)

// CustomerWithAccount pairs a customer with their first active account, used
// as a recipient-matcher source.
type CustomerWithAccount struct {
	Customer domain.Customer
	Account  domain.Account
}

// HistoryCounterparty is a past transfer counterparty recovered from the
// ledger, used as a recipient-matcher source.
type HistoryCounterparty struct {
	Name          string
	AccountNumber string
	BankName      string
}

// TransferParams are the inputs to the double-entry ledger executor.
type TransferParams struct {
	CustomerID      uuid.UUID
	SourceAccountID uuid.UUID
	Recipient       domain.Recipient
	Amount          int64 // in kobo, must be positive
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Customer and account methods
	FindCustomerByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	FindActiveAccountsByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// Beneficiary methods
	FindBeneficiaryByID(ctx context.Context, beneficiaryID uuid.UUID, customerID uuid.UUID) (*domain.Beneficiary, error)

	// Recipient-matcher sources
	FindBeneficiariesMatching(ctx context.Context, customerID uuid.UUID, namePattern string, limit int) ([]domain.Beneficiary, error)
	FindCustomersMatching(ctx context.Context, namePattern string, excludeCustomerID uuid.UUID, limit int) ([]CustomerWithAccount, error)
	FindHistoryCounterpartiesMatching(ctx context.Context, customerID uuid.UUID, namePattern string, limit int) ([]HistoryCounterparty, error)

	// Transaction PIN security methods
	GetSecurityCredentialByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.CustomerSecurityCredential, error)
	RecordFailedPINAttempt(ctx context.Context, customerID uuid.UUID, maxAttempts int, lockoutSeconds int) (*domain.CustomerSecurityCredential, error)
	ResetPINFailureState(ctx context.Context, customerID uuid.UUID) error

	// Ledger executor
	ExecuteTransfer(ctx context.Context, params TransferParams) (*domain.LedgerEntry, error)
	ExecuteInternalTransfer(ctx context.Context, customerID, sourceAccountID, targetAccountID uuid.UUID, amount int64) (*domain.LedgerEntry, error)

	// Ledger reads
	FindLedgerEntriesByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, error)
}
