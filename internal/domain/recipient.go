package domain

import "github.com/google/uuid"

// RecipientOrigin tags where a recipient candidate came from. The orchestrator
// and the ledger executor branch on this single discriminant instead of passing
// around ad hoc shapes.
type RecipientOrigin string

const (
	// OriginBeneficiary is a recipient loaded from the customer's saved beneficiaries.
	OriginBeneficiary RecipientOrigin = "beneficiary"
	// OriginCustomer is another customer of this system matched by name.
	OriginCustomer RecipientOrigin = "customer"
	// OriginHistory is a counterparty recovered from the customer's past transfers.
	OriginHistory RecipientOrigin = "history"
	// OriginVerified is an account freshly verified against an external bank.
	OriginVerified RecipientOrigin = "verified"
)

// Recipient is the tagged union describing a credit target regardless of where
// it was discovered.
type Recipient struct {
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	BankName      string          `json:"bank_name"`
	Origin        RecipientOrigin `json:"origin"`
	BeneficiaryID *uuid.UUID      `json:"beneficiary_id,omitempty"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
}

// Last4 returns the last four digits of the recipient account number.
func (r Recipient) Last4() string {
	if len(r.AccountNumber) < 4 {
		return r.AccountNumber
	}
	return r.AccountNumber[len(r.AccountNumber)-4:]
}
