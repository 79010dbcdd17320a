package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/domain"
	"github.com/swiftsend/transfer-service/internal/store"
)

// fakeRepo is an in-memory store.Repository for orchestrator tests. Its
// ExecuteTransfer applies the conditional debit under a mutex, matching the
// atomicity the SQL implementation gets from the database.
type fakeRepo struct {
	mu sync.Mutex

	customers     map[uuid.UUID]domain.Customer
	accounts      []*domain.Account
	beneficiaries []*domain.Beneficiary
	customerMatch []store.CustomerWithAccount
	history       []store.HistoryCounterparty
	credentials   map[uuid.UUID]*domain.CustomerSecurityCredential
	ledger        []domain.LedgerEntry

	sink *domain.Account
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		customers:   make(map[uuid.UUID]domain.Customer),
		credentials: make(map[uuid.UUID]*domain.CustomerSecurityCredential),
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (r *fakeRepo) FindCustomerByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return nil, store.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *fakeRepo) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == accountID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (r *fakeRepo) FindActiveAccountsByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Account
	for _, a := range r.accounts {
		if a.CustomerID == customerID && a.DeletedAt == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.AccountNumber == accountNumber && a.DeletedAt == nil {
			copied := *a
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (r *fakeRepo) FindBeneficiaryByID(ctx context.Context, beneficiaryID, customerID uuid.UUID) (*domain.Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.beneficiaries {
		if b.ID == beneficiaryID && b.CustomerID == customerID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, store.ErrBeneficiaryNotFound
}

func (r *fakeRepo) FindBeneficiariesMatching(ctx context.Context, customerID uuid.UUID, namePattern string, limit int) ([]domain.Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Beneficiary
	for _, b := range r.beneficiaries {
		if b.CustomerID == customerID && containsFold(b.Name, namePattern) {
			out = append(out, *b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) FindCustomersMatching(ctx context.Context, namePattern string, excludeCustomerID uuid.UUID, limit int) ([]store.CustomerWithAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []store.CustomerWithAccount
	for _, m := range r.customerMatch {
		if m.Customer.ID != excludeCustomerID && containsFold(m.Customer.FullName, namePattern) {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) FindHistoryCounterpartiesMatching(ctx context.Context, customerID uuid.UUID, namePattern string, limit int) ([]store.HistoryCounterparty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []store.HistoryCounterparty
	for _, h := range r.history {
		if containsFold(h.Name, namePattern) {
			out = append(out, h)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) GetSecurityCredentialByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.CustomerSecurityCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[customerID]
	if !ok || c.PINHash == "" {
		return nil, store.ErrPINNotSet
	}
	copied := *c
	return &copied, nil
}

func (r *fakeRepo) RecordFailedPINAttempt(ctx context.Context, customerID uuid.UUID, maxAttempts, lockoutSeconds int) (*domain.CustomerSecurityCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[customerID]
	if !ok {
		return nil, store.ErrPINNotSet
	}
	c.FailedAttempts++
	if c.FailedAttempts >= maxAttempts {
		until := time.Now().Add(time.Duration(lockoutSeconds) * time.Second)
		c.LockedUntil = &until
	}
	copied := *c
	return &copied, nil
}

func (r *fakeRepo) ResetPINFailureState(ctx context.Context, customerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[customerID]
	if !ok {
		return store.ErrPINNotSet
	}
	c.FailedAttempts = 0
	c.LockedUntil = nil
	return nil
}

func (r *fakeRepo) accountByID(id uuid.UUID) *domain.Account {
	for _, a := range r.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (r *fakeRepo) accountByNumber(number string) *domain.Account {
	for _, a := range r.accounts {
		if a.AccountNumber == number && a.DeletedAt == nil {
			return a
		}
	}
	return nil
}

func (r *fakeRepo) appendEntry(accountID, customerID uuid.UUID, counterparty domain.Recipient, amount, before, after int64, direction, reference string) domain.LedgerEntry {
	entry := domain.LedgerEntry{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		AccountID:           accountID,
		CounterpartyName:    counterparty.Name,
		CounterpartyBank:    counterparty.BankName,
		CounterpartyAccount: counterparty.AccountNumber,
		Amount:              amount,
		BalanceBefore:       before,
		BalanceAfter:        after,
		Direction:           direction,
		Status:              domain.StatusCompleted,
		Reference:           reference,
		CreatedAt:           time.Now(),
	}
	r.ledger = append(r.ledger, entry)
	return entry
}

func (r *fakeRepo) ExecuteTransfer(ctx context.Context, params store.TransferParams) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	source := r.accountByID(params.SourceAccountID)
	if source == nil || source.CustomerID != params.CustomerID {
		return nil, store.ErrAccountNotFound
	}
	if source.Balance < params.Amount {
		return nil, store.ErrInsufficientFunds
	}

	correlation := uuid.NewString()
	before := source.Balance
	source.Balance -= params.Amount
	debit := r.appendEntry(source.ID, params.CustomerID, params.Recipient,
		params.Amount, before, source.Balance, domain.DirectionDebit, fmt.Sprintf("TRF-%s-D", correlation))

	sender := domain.Recipient{
		Name:          r.customers[params.CustomerID].FullName,
		AccountNumber: source.AccountNumber,
		BankName:      source.BankName,
	}

	target := r.accountByNumber(params.Recipient.AccountNumber)
	if target == nil {
		if r.sink == nil {
			r.sink = &domain.Account{ID: uuid.New(), AccountNumber: "0000000000", BankName: "External Settlement"}
		}
		target = r.sink
	}
	targetBefore := target.Balance
	target.Balance += params.Amount
	r.appendEntry(target.ID, target.CustomerID, sender,
		params.Amount, targetBefore, target.Balance, domain.DirectionCredit, fmt.Sprintf("TRF-%s-C", correlation))

	if params.Recipient.BeneficiaryID != nil {
		for _, b := range r.beneficiaries {
			if b.ID == *params.Recipient.BeneficiaryID {
				b.UsageCount++
				now := time.Now()
				b.LastUsedAt = &now
			}
		}
	}

	return &debit, nil
}

func (r *fakeRepo) ExecuteInternalTransfer(ctx context.Context, customerID, sourceAccountID, targetAccountID uuid.UUID, amount int64) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sourceAccountID == targetAccountID {
		return nil, store.ErrSameAccount
	}
	source := r.accountByID(sourceAccountID)
	target := r.accountByID(targetAccountID)
	if source == nil || target == nil || source.CustomerID != customerID || target.CustomerID != customerID {
		return nil, store.ErrAccountNotFound
	}
	if source.Balance < amount {
		return nil, store.ErrInsufficientFunds
	}

	correlation := uuid.NewString()
	before := source.Balance
	source.Balance -= amount
	debit := r.appendEntry(source.ID, customerID,
		domain.Recipient{Name: "Own account", AccountNumber: target.AccountNumber, BankName: target.BankName},
		amount, before, source.Balance, domain.DirectionDebit, fmt.Sprintf("INT-%s-D", correlation))

	targetBefore := target.Balance
	target.Balance += amount
	r.appendEntry(target.ID, customerID,
		domain.Recipient{Name: "Own account", AccountNumber: source.AccountNumber, BankName: source.BankName},
		amount, targetBefore, target.Balance, domain.DirectionCredit, fmt.Sprintf("INT-%s-C", correlation))

	return &debit, nil
}

func (r *fakeRepo) FindLedgerEntriesByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(r.ledger) - 1; i >= 0; i-- {
		if r.ledger[i].CustomerID == customerID {
			out = append(out, r.ledger[i])
		}
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeVerifier resolves accounts from a fixed table keyed by account number.
type fakeVerifier struct {
	holders map[string]domain.VerifiedAccountHolder
}

func (v *fakeVerifier) VerifyAccount(ctx context.Context, accountNumber, institutionCode string) (*domain.VerifiedAccountHolder, error) {
	if holder, ok := v.holders[accountNumber]; ok {
		return &holder, nil
	}
	return nil, fmt.Errorf("no record for account %s at institution %s", accountNumber, institutionCode)
}
