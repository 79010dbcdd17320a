/**
 * @description
 * This file defines the core domain models for the transfer-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are stored as `int64` to represent the value in the smallest currency
 *   unit (kobo), which avoids floating-point inaccuracies with financial data.
 * - Ledger entries are immutable once written; balances are mutated only by the
 *   ledger executor inside a single database transaction.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry directions.
const (
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// Ledger entry statuses.
const (
	StatusCompleted = "completed"
)

// Customer is the minimal customer view needed by the transfer-service:
// recipient matching and transaction PIN verification.
type Customer struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
	PINHash  string    `json:"-"`
}

// Account represents a customer's funding account. Balance is never negative;
// the repository enforces this with a conditional debit.
type Account struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	AccountNumber string     `json:"account_number"`
	Balance       int64      `json:"balance"` // in kobo
	Currency      string     `json:"currency"`
	BankName      string     `json:"bank_name"`
	DeletedAt     *time.Time `json:"-"`
}

// Last4 returns the last four digits of the account number, used in
// disambiguation prompts.
func (a Account) Last4() string {
	if len(a.AccountNumber) < 4 {
		return a.AccountNumber
	}
	return a.AccountNumber[len(a.AccountNumber)-4:]
}

// Beneficiary represents a customer's saved transfer recipient. The usage
// counter and last-used timestamp are bumped only as a side effect of a
// successful transfer that used it.
type Beneficiary struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	Name          string     `json:"name"`
	AccountNumber string     `json:"account_number"`
	BankName      string     `json:"bank_name"`
	UsageCount    int        `json:"usage_count"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LedgerEntry is an immutable record of one account-side effect of a money
// movement, carrying balance-before/after. Every successful transfer produces
// exactly one debit entry and one correlated credit entry of equal amount.
type LedgerEntry struct {
	ID                  uuid.UUID  `json:"id"`
	CustomerID          uuid.UUID  `json:"customer_id"`
	AccountID           uuid.UUID  `json:"account_id"`
	CounterpartyName    string     `json:"counterparty_name"`
	CounterpartyBank    string     `json:"counterparty_bank"`
	CounterpartyAccount string     `json:"counterparty_account"`
	Amount              int64      `json:"amount"` // in kobo, always positive; see Direction
	BalanceBefore       int64      `json:"balance_before"`
	BalanceAfter        int64      `json:"balance_after"`
	Direction           string     `json:"direction"` // 'debit' or 'credit'
	Status              string     `json:"status"`
	Reference           string     `json:"reference"`
	CreatedAt           time.Time  `json:"created_at"`
	DeletedAt           *time.Time `json:"-"`
}

// ParsedRequest is the structured output of the external intent extractor.
// The orchestrator consumes only this shape and never re-parses the free text
// it was derived from.
type ParsedRequest struct {
	Amount        int64   `json:"amount,omitempty"` // in kobo, 0 when absent
	RecipientName string  `json:"recipient_name,omitempty"`
	AccountNumber string  `json:"account_number,omitempty"`
	Confidence    float64 `json:"confidence"`
}

// FlowResponse is the shape returned by every orchestration operation. It is
// what the conversational transport relays back to the customer.
type FlowResponse struct {
	Message              string `json:"message"`
	PendingTransactionID string `json:"pending_transaction_id,omitempty"`
	RequiredAction       string `json:"required_action,omitempty"`
	Executed             bool   `json:"executed"`
	Reference            string `json:"reference,omitempty"`
}

// Required actions a FlowResponse may ask of the caller.
const (
	ActionSelectAccount   = "select_account"
	ActionSelectRecipient = "select_recipient"
	ActionConfirmPIN      = "confirm_pin"
)

// VerifiedAccountHolder is the result of a successful external bank
// verification call.
type VerifiedAccountHolder struct {
	HolderName    string `json:"holder_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code"`
}
