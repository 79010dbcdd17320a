package domain

import (
	"time"

	"github.com/google/uuid"
)

// PendingStage enumerates the disambiguation stages a pending transaction can
// sit in while it waits for a follow-up reply from the customer.
type PendingStage string

const (
	StageAccountSelection     PendingStage = "account_selection"
	StageRecipientResolution  PendingStage = "recipient_resolution"
	StageBeneficiarySelection PendingStage = "beneficiary_selection"
	StagePendingPIN           PendingStage = "pending_pin"
)

// Pending transaction type tags.
const (
	PendingTypeTransfer = "transfer"
)

// TransferPayload is the type-specific state carried by a pending transfer
// while it advances through the stages. Candidate lists are preserved across
// re-prompts so an unrecognized reply never loses progress.
type TransferPayload struct {
	Amount              int64       `json:"amount"` // in kobo
	AccountCandidates   []Account   `json:"account_candidates,omitempty"`
	SourceAccountID     *uuid.UUID  `json:"source_account_id,omitempty"`
	RecipientName       string      `json:"recipient_name,omitempty"`
	RecipientAccount    string      `json:"recipient_account,omitempty"`
	RecipientCandidates []Recipient `json:"recipient_candidates,omitempty"`
	Recipient           *Recipient  `json:"recipient,omitempty"`
	PINAttempts         int         `json:"pin_attempts"`
}

// PendingTransaction is a transient, uniquely identified money-movement intent
// awaiting further disambiguation or confirmation. Ownership is exclusive to
// the creating customer; it becomes unreachable once ExpiresAt passes.
type PendingTransaction struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Stage      PendingStage    `json:"stage"`
	Payload    TransferPayload `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL cutoff at the given time.
func (p PendingTransaction) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
