/**
 * @description
 * This file implements the recipient matcher. Given a customer id and a name
 * fragment it merges candidates from three sources (saved beneficiaries, other
 * customers, past transfer counterparties), deduplicates them and caps the
 * result, so the orchestrator sees one flat candidate list regardless of where
 * a recipient came from.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: Customer identifiers.
 * - internal/domain, internal/store: Domain models and data access.
 */

package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/domain"
	"github.com/swiftsend/transfer-service/internal/store"
)

// MatchLimit caps the merged candidate list so a one-letter search cannot
// produce an unbounded response.
const MatchLimit = 50

// Matcher searches for transfer recipients by name fragment.
type Matcher struct {
	repo store.Repository
}

// NewMatcher creates a new recipient matcher backed by the given repository.
func NewMatcher(repo store.Repository) *Matcher {
	return &Matcher{repo: repo}
}

// Search returns up to MatchLimit recipient candidates whose name contains the
// pattern, case-insensitively. Sources are merged in priority order: saved
// beneficiaries (most used first), then other customers holding an active
// account, then the customer's own transfer history (most recent first).
// Duplicates are collapsed on (account number, bank name); the first source to
// produce a pair wins.
func (m *Matcher) Search(ctx context.Context, customerID uuid.UUID, namePattern string) ([]domain.Recipient, error) {
	type dedupeKey struct {
		accountNumber string
		bankName      string
	}
	seen := make(map[dedupeKey]struct{})
	var results []domain.Recipient

	add := func(r domain.Recipient) {
		if len(results) >= MatchLimit {
			return
		}
		key := dedupeKey{r.AccountNumber, r.BankName}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		results = append(results, r)
	}

	beneficiaries, err := m.repo.FindBeneficiariesMatching(ctx, customerID, namePattern, MatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search beneficiaries: %w", err)
	}
	for _, b := range beneficiaries {
		id := b.ID
		add(domain.Recipient{
			Name:          b.Name,
			AccountNumber: b.AccountNumber,
			BankName:      b.BankName,
			Origin:        domain.OriginBeneficiary,
			BeneficiaryID: &id,
		})
	}

	customers, err := m.repo.FindCustomersMatching(ctx, namePattern, customerID, MatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	for _, c := range customers {
		id := c.Customer.ID
		add(domain.Recipient{
			Name:          c.Customer.FullName,
			AccountNumber: c.Account.AccountNumber,
			BankName:      c.Account.BankName,
			Origin:        domain.OriginCustomer,
			CustomerID:    &id,
		})
	}

	history, err := m.repo.FindHistoryCounterpartiesMatching(ctx, customerID, namePattern, MatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search transfer history: %w", err)
	}
	for _, h := range history {
		add(domain.Recipient{
			Name:          h.Name,
			AccountNumber: h.AccountNumber,
			BankName:      h.BankName,
			Origin:        domain.OriginHistory,
		})
	}

	return results, nil
}
