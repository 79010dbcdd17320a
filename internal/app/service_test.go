package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/banks"
	"github.com/swiftsend/transfer-service/internal/domain"
	"github.com/swiftsend/transfer-service/internal/pending"
	"github.com/swiftsend/transfer-service/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const testPIN = "1234"

func mustHashPIN(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPIN), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash pin: %v", err)
	}
	return string(hash)
}

type testEnv struct {
	repo         *fakeRepo
	pendingStore pending.Store
	verifier     *fakeVerifier
	service      *Service
	customerID   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeRepo()
	verifier := &fakeVerifier{holders: make(map[string]domain.VerifiedAccountHolder)}
	pendingStore := pending.NewMemoryStore(pending.DefaultTTL)

	customerID := uuid.New()
	repo.customers[customerID] = domain.Customer{ID: customerID, FullName: "Chidi Okafor", Phone: "+2348012345678"}
	repo.credentials[customerID] = &domain.CustomerSecurityCredential{CustomerID: customerID, PINHash: mustHashPIN(t)}

	service := NewService(repo, pendingStore, banks.NewResolver(verifier), nil, 3, 600)
	return &testEnv{
		repo:         repo,
		pendingStore: pendingStore,
		verifier:     verifier,
		service:      service,
		customerID:   customerID,
	}
}

func (e *testEnv) addAccount(number string, balance int64) *domain.Account {
	account := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    e.customerID,
		AccountNumber: number,
		Balance:       balance,
		Currency:      "NGN",
		BankName:      "SwiftSend",
	}
	e.repo.accounts = append(e.repo.accounts, account)
	return account
}

func (e *testEnv) addBeneficiary(name, number, bank string) *domain.Beneficiary {
	beneficiary := &domain.Beneficiary{
		ID:            uuid.New(),
		CustomerID:    e.customerID,
		Name:          name,
		AccountNumber: number,
		BankName:      bank,
		CreatedAt:     time.Now(),
	}
	e.repo.beneficiaries = append(e.repo.beneficiaries, beneficiary)
	return beneficiary
}

// validExternalAccount builds an account number whose NUBAN checksum matches
// the given institution and registers its holder with the fake verifier.
func (e *testEnv) validExternalAccount(t *testing.T, serial9, institutionCode, holderName string) string {
	t.Helper()
	digit := banks.CheckDigit(serial9, institutionCode)
	if digit < 0 {
		t.Fatalf("could not build account number from serial %q", serial9)
	}
	number := serial9 + string(rune('0'+digit))
	e.verifier.holders[number] = domain.VerifiedAccountHolder{
		HolderName:    holderName,
		AccountNumber: number,
		BankName:      banks.NameForCode(institutionCode),
		BankCode:      institutionCode,
	}
	return number
}

func TestSingleBeneficiaryStraightToPIN(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := env.addAccount("0234567890", 20000)
	beneficiary := env.addBeneficiary("Ada Obi", "5566771234", "Guaranty Trust Bank")

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 5000, RecipientName: "Ada"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}
	if resp.RequiredAction != domain.ActionConfirmPIN {
		t.Fatalf("expected confirm_pin action, got %q (message: %s)", resp.RequiredAction, resp.Message)
	}
	if resp.PendingTransactionID == "" {
		t.Fatal("expected a pending transaction id")
	}
	if !strings.Contains(resp.Message, "Ada Obi") {
		t.Fatalf("expected message to identify the beneficiary, got %q", resp.Message)
	}

	confirm, err := env.service.ConfirmPIN(ctx, resp.PendingTransactionID, env.customerID, testPIN)
	if err != nil {
		t.Fatalf("ConfirmPIN failed: %v", err)
	}
	if !confirm.Executed || confirm.Reference == "" {
		t.Fatalf("expected executed response with reference, got %+v", confirm)
	}

	if account.Balance != 15000 {
		t.Fatalf("expected balance 15000 after transfer, got %d", account.Balance)
	}

	var debits []domain.LedgerEntry
	for _, entry := range env.repo.ledger {
		if entry.Direction == domain.DirectionDebit && entry.CustomerID == env.customerID {
			debits = append(debits, entry)
		}
	}
	if len(debits) != 1 {
		t.Fatalf("expected exactly one debit entry, got %d", len(debits))
	}
	if debits[0].Amount != 5000 || debits[0].CounterpartyAccount != beneficiary.AccountNumber {
		t.Fatalf("unexpected debit entry: %+v", debits[0])
	}
	if beneficiary.UsageCount != 1 {
		t.Fatalf("expected beneficiary usage count 1, got %d", beneficiary.UsageCount)
	}

	// The debit must be paired with exactly one correlated credit of equal
	// amount and a symmetric balance movement.
	creditRef := strings.Replace(debits[0].Reference, "-D", "-C", 1)
	var credits []domain.LedgerEntry
	for _, entry := range env.repo.ledger {
		if entry.Reference == creditRef {
			credits = append(credits, entry)
		}
	}
	if len(credits) != 1 {
		t.Fatalf("expected exactly one credit entry with reference %s, got %d", creditRef, len(credits))
	}
	credit := credits[0]
	if credit.Direction != domain.DirectionCredit || credit.Amount != debits[0].Amount {
		t.Fatalf("unexpected credit entry: %+v", credit)
	}
	if credit.BalanceAfter-credit.BalanceBefore != debits[0].BalanceBefore-debits[0].BalanceAfter {
		t.Fatalf("balance movements are not symmetric: credit %d->%d, debit %d->%d",
			credit.BalanceBefore, credit.BalanceAfter, debits[0].BalanceBefore, debits[0].BalanceAfter)
	}
	assertUniqueReferences(t, env.repo.ledger)

	// Executed pending transactions must be unreachable immediately.
	if _, err := env.pendingStore.Get(ctx, resp.PendingTransactionID); !errors.Is(err, pending.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for executed pending transaction, got %v", err)
	}
}

func TestAccountSelectionRejectsInsufficientAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAccount("1231231111", 1000)
	env.addAccount("3213212222", 50000)
	external := env.validExternalAccount(t, "987654321", "058", "Bisi Adeyemi")

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 20000, AccountNumber: external})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}
	if resp.RequiredAction != domain.ActionSelectAccount {
		t.Fatalf("expected select_account action, got %q", resp.RequiredAction)
	}

	// The low-balance account is rejected and both accounts stay listed.
	retry, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "1111")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if retry.RequiredAction != domain.ActionSelectAccount {
		t.Fatalf("expected re-prompt with select_account, got %q", retry.RequiredAction)
	}
	if !strings.Contains(retry.Message, "1111") || !strings.Contains(retry.Message, "2222") {
		t.Fatalf("expected both accounts in re-prompt, got %q", retry.Message)
	}

	advance, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "2222")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if advance.RequiredAction != domain.ActionConfirmPIN {
		t.Fatalf("expected confirm_pin after funded account chosen, got %q (message: %s)", advance.RequiredAction, advance.Message)
	}
	if !strings.Contains(advance.Message, "Bisi Adeyemi") {
		t.Fatalf("expected verified holder in message, got %q", advance.Message)
	}
}

func TestBeneficiarySelectionBindsExactCandidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAccount("0234567890", 100000)
	env.addBeneficiary("John Doe", "1112221111", "Access Bank")
	target := env.addBeneficiary("John Doe", "3334442222", "Zenith Bank")
	env.addBeneficiary("John Doe", "5556663333", "Wema Bank")

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 5000, RecipientName: "John Doe"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}
	if resp.RequiredAction != domain.ActionSelectRecipient {
		t.Fatalf("expected select_recipient action, got %q", resp.RequiredAction)
	}

	// An unmatched reply re-prompts with the same three candidates.
	retry, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "9999")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if retry.RequiredAction != domain.ActionSelectRecipient {
		t.Fatalf("expected re-prompt with select_recipient, got %q", retry.RequiredAction)
	}
	entry, err := env.pendingStore.Get(ctx, resp.PendingTransactionID)
	if err != nil {
		t.Fatalf("pending transaction lost after re-prompt: %v", err)
	}
	if entry.Stage != domain.StageBeneficiarySelection || len(entry.Payload.RecipientCandidates) != 3 {
		t.Fatalf("expected unchanged beneficiary selection state, got stage=%s candidates=%d", entry.Stage, len(entry.Payload.RecipientCandidates))
	}

	bind, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "2222")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if bind.RequiredAction != domain.ActionConfirmPIN {
		t.Fatalf("expected confirm_pin after selection, got %q", bind.RequiredAction)
	}
	bound, err := env.pendingStore.Get(ctx, resp.PendingTransactionID)
	if err != nil {
		t.Fatalf("pending transaction lost after binding: %v", err)
	}
	if bound.Payload.Recipient == nil || bound.Payload.Recipient.AccountNumber != target.AccountNumber {
		t.Fatalf("expected recipient bound to account %s, got %+v", target.AccountNumber, bound.Payload.Recipient)
	}
}

func TestConcurrentTransfersCannotOverdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := env.addAccount("0234567890", 30000)
	env.addBeneficiary("Ada Obi", "5566771234", "Guaranty Trust Bank")
	env.addBeneficiary("Bola Tinu", "9988773322", "Access Bank")

	first, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 20000, RecipientName: "Ada"})
	if err != nil {
		t.Fatalf("first InitiateTransfer failed: %v", err)
	}
	second, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 20000, RecipientName: "Bola"})
	if err != nil {
		t.Fatalf("second InitiateTransfer failed: %v", err)
	}
	if first.RequiredAction != domain.ActionConfirmPIN || second.RequiredAction != domain.ActionConfirmPIN {
		t.Fatalf("expected both flows at confirm_pin, got %q and %q", first.RequiredAction, second.RequiredAction)
	}

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []string{first.PendingTransactionID, second.PendingTransactionID} {
		wg.Add(1)
		go func(i int, pendingID string) {
			defer wg.Done()
			_, err := env.service.ConfirmPIN(ctx, pendingID, env.customerID, testPIN)
			results[i] = err
		}(i, id)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, store.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error from concurrent confirm: %v", err)
		}
	}
	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one insufficient-funds failure, got %d and %d", succeeded, insufficient)
	}
	if account.Balance != 10000 {
		t.Fatalf("expected final balance 10000, got %d", account.Balance)
	}
	// The failed attempt must leave no ledger rows behind.
	if len(env.repo.ledger) != 2 {
		t.Fatalf("expected one debit/credit pair in the ledger, got %d rows", len(env.repo.ledger))
	}
	assertUniqueReferences(t, env.repo.ledger)
}

func assertUniqueReferences(t *testing.T, ledger []domain.LedgerEntry) {
	t.Helper()
	seen := make(map[string]struct{}, len(ledger))
	for _, entry := range ledger {
		if _, dup := seen[entry.Reference]; dup {
			t.Fatalf("ledger reference %s appears more than once", entry.Reference)
		}
		seen[entry.Reference] = struct{}{}
	}
}

func TestInSystemAccountNumberResolvesLocally(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAccount("0234567890", 20000)

	// Another customer of this system; their account is not registered with
	// the verifier, so only a local lookup can resolve it.
	peerID := uuid.New()
	env.repo.customers[peerID] = domain.Customer{ID: peerID, FullName: "Emeka Obi", Phone: "+2348098765432"}
	peerAccount := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    peerID,
		AccountNumber: "3216549870",
		Balance:       100,
		Currency:      "NGN",
		BankName:      "SwiftSend",
	}
	env.repo.accounts = append(env.repo.accounts, peerAccount)

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 5000, AccountNumber: "3216549870"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}
	if resp.RequiredAction != domain.ActionConfirmPIN {
		t.Fatalf("expected confirm_pin action, got %q (message: %s)", resp.RequiredAction, resp.Message)
	}
	if !strings.Contains(resp.Message, "Emeka Obi") {
		t.Fatalf("expected account owner in message, got %q", resp.Message)
	}

	entry, err := env.pendingStore.Get(ctx, resp.PendingTransactionID)
	if err != nil {
		t.Fatalf("pending transaction not found: %v", err)
	}
	if entry.Payload.Recipient == nil || entry.Payload.Recipient.Origin != domain.OriginCustomer {
		t.Fatalf("expected customer-origin recipient, got %+v", entry.Payload.Recipient)
	}

	if _, err := env.service.ConfirmPIN(ctx, resp.PendingTransactionID, env.customerID, testPIN); err != nil {
		t.Fatalf("ConfirmPIN failed: %v", err)
	}
	// The credit lands on the peer's real account, not the external sink.
	if peerAccount.Balance != 5100 {
		t.Fatalf("expected peer balance 5100, got %d", peerAccount.Balance)
	}
}

func TestRecipientAccountMatchingSourceReasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAccount("0234567890", 20000)

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 5000, AccountNumber: "0234567890"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}
	if resp.RequiredAction != domain.ActionSelectRecipient {
		t.Fatalf("expected select_recipient re-ask, got %q (message: %s)", resp.RequiredAction, resp.Message)
	}

	entry, err := env.pendingStore.Get(ctx, resp.PendingTransactionID)
	if err != nil {
		t.Fatalf("pending transaction not found: %v", err)
	}
	if entry.Stage != domain.StageRecipientResolution {
		t.Fatalf("expected recipient_resolution stage, got %q", entry.Stage)
	}
}

func TestAccountSelectionUsesCurrentBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	drained := env.addAccount("1231231111", 30000)
	env.addAccount("3213212222", 50000)
	env.addBeneficiary("Ada Obi", "5566771234", "Guaranty Trust Bank")

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 20000, RecipientName: "Ada"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}
	if resp.RequiredAction != domain.ActionSelectAccount {
		t.Fatalf("expected select_account action, got %q", resp.RequiredAction)
	}

	// The balance drops after the candidate list was snapshotted; selection
	// must be judged on the current balance, not the snapshot.
	drained.Balance = 1000

	retry, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "1111")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if retry.RequiredAction != domain.ActionSelectAccount {
		t.Fatalf("expected re-prompt on stale balance, got %q (message: %s)", retry.RequiredAction, retry.Message)
	}
	if !strings.Contains(retry.Message, formatNaira(1000)) {
		t.Fatalf("expected current balance in re-prompt, got %q", retry.Message)
	}

	advance, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "2222")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if advance.RequiredAction != domain.ActionConfirmPIN {
		t.Fatalf("expected confirm_pin after funded account chosen, got %q", advance.RequiredAction)
	}
}

func TestDeletedBeneficiaryReprompts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAccount("0234567890", 100000)
	env.addBeneficiary("John Doe", "1112221111", "Access Bank")
	removed := env.addBeneficiary("John Doe", "3334442222", "Zenith Bank")
	env.addBeneficiary("John Doe", "5556663333", "Wema Bank")

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 5000, RecipientName: "John Doe"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}
	if resp.RequiredAction != domain.ActionSelectRecipient {
		t.Fatalf("expected select_recipient action, got %q", resp.RequiredAction)
	}

	// The beneficiary is deleted while the flow waits for the reply.
	var kept []*domain.Beneficiary
	for _, b := range env.repo.beneficiaries {
		if b.ID != removed.ID {
			kept = append(kept, b)
		}
	}
	env.repo.beneficiaries = kept

	retry, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "2222")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if retry.RequiredAction != domain.ActionSelectRecipient {
		t.Fatalf("expected re-prompt after deletion, got %q", retry.RequiredAction)
	}
	if _, err := env.pendingStore.Get(ctx, resp.PendingTransactionID); err != nil {
		t.Fatalf("pending transaction lost after re-prompt: %v", err)
	}

	bind, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, env.customerID, "3333")
	if err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	if bind.RequiredAction != domain.ActionConfirmPIN {
		t.Fatalf("expected confirm_pin after choosing a live recipient, got %q", bind.RequiredAction)
	}
}

func TestWrongPINConsumesRetryBudget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAccount("0234567890", 20000)
	env.addBeneficiary("Ada Obi", "5566771234", "Guaranty Trust Bank")

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 5000, RecipientName: "Ada"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}

	for attempt := 1; attempt <= 2; attempt++ {
		retry, err := env.service.ConfirmPIN(ctx, resp.PendingTransactionID, env.customerID, "0000")
		if err != nil {
			t.Fatalf("attempt %d: expected re-prompt, got error %v", attempt, err)
		}
		if retry.RequiredAction != domain.ActionConfirmPIN {
			t.Fatalf("attempt %d: expected confirm_pin action, got %q", attempt, retry.RequiredAction)
		}
	}

	_, err = env.service.ConfirmPIN(ctx, resp.PendingTransactionID, env.customerID, "0000")
	if !errors.Is(err, ErrPINAttemptsExhausted) {
		t.Fatalf("expected ErrPINAttemptsExhausted on final attempt, got %v", err)
	}
	if _, err := env.pendingStore.Get(ctx, resp.PendingTransactionID); !errors.Is(err, pending.ErrNotFound) {
		t.Fatalf("expected discarded pending transaction, got %v", err)
	}
}

func TestPendingTransactionOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAccount("0234567890", 20000)
	env.addBeneficiary("Ada Obi", "5566771234", "Guaranty Trust Bank")

	resp, err := env.service.InitiateTransfer(ctx, env.customerID, domain.ParsedRequest{Amount: 5000, RecipientName: "Ada"})
	if err != nil {
		t.Fatalf("InitiateTransfer failed: %v", err)
	}

	intruder := uuid.New()
	if _, err := env.service.SubmitSelection(ctx, resp.PendingTransactionID, intruder, "first"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign customer, got %v", err)
	}
	if _, err := env.service.ConfirmPIN(ctx, resp.PendingTransactionID, intruder, testPIN); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign pin confirm, got %v", err)
	}

	// The pending transaction must be untouched for its owner.
	if _, err := env.pendingStore.Get(ctx, resp.PendingTransactionID); err != nil {
		t.Fatalf("pending transaction should survive unauthorized access: %v", err)
	}
}

func TestInternalTransferRejectsSameAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	source := env.addAccount("0234567890", 20000)
	target := env.addAccount("0987654321", 1000)

	if _, err := env.service.InternalTransfer(ctx, env.customerID, source.ID, source.ID, 5000); !errors.Is(err, store.ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}

	debit, err := env.service.InternalTransfer(ctx, env.customerID, source.ID, target.ID, 5000)
	if err != nil {
		t.Fatalf("InternalTransfer failed: %v", err)
	}
	if source.Balance != 15000 || target.Balance != 6000 {
		t.Fatalf("unexpected balances after internal transfer: %d and %d", source.Balance, target.Balance)
	}
	if debit.Direction != domain.DirectionDebit || debit.Amount != 5000 {
		t.Fatalf("unexpected debit entry: %+v", debit)
	}
}
