/**
 * @description
 * This file contains the core business logic for the transfer-service. The
 * `Service` struct is the transfer orchestrator: it drives a money movement
 * from the first parsed request through account and recipient disambiguation
 * to PIN confirmation and ledger execution, coordinating the database
 * repository, the pending transaction store, the bank account resolver, the
 * recipient matcher and the message broker.
 *
 * Key features:
 * - Multi-turn state machine over pending transactions with preserved
 *   candidate lists across re-prompts.
 * - Per-pending-id serialization so replies for one id apply in order.
 * - Bounded PIN retry budget per pending transaction plus per-customer
 *   lockout counters.
 * - Publishes transfer events to RabbitMQ for asynchronous processing.
 *
 * @dependencies
 * - context, errors, fmt, log, strconv, time: Standard Go libraries.
 * - github.com/google/uuid: Customer and account identifiers.
 * - internal/banks, internal/domain, internal/pending, internal/store: Core modules.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/banks"
	"github.com/swiftsend/transfer-service/internal/domain"
	"github.com/swiftsend/transfer-service/internal/pending"
	"github.com/swiftsend/transfer-service/internal/store"
	"github.com/swiftsend/transfer-service/pkg/rabbitmq"
)

var (
	// ErrUnauthorized is returned when a customer acts on a pending
	// transaction they do not own. The transaction is left untouched.
	ErrUnauthorized = errors.New("pending transaction belongs to another customer")
	// ErrInvalidAmount is returned for non-positive transfer amounts.
	ErrInvalidAmount = errors.New("transfer amount must be positive")
	// ErrNotAwaitingPIN is returned when PIN confirmation is submitted for a
	// pending transaction still in an earlier stage.
	ErrNotAwaitingPIN = errors.New("pending transaction is not awaiting pin confirmation")
	// ErrNoActiveAccount is returned when the customer has no account to fund
	// a transfer from.
	ErrNoActiveAccount = errors.New("customer has no active account")
)

// DefaultMaxPINAttempts is the per-pending-transaction retry budget. After
// this many wrong PINs the pending transaction is discarded and the flow must
// be restarted.
const DefaultMaxPINAttempts = 3

// Service provides the core business logic for transfer orchestration.
type Service struct {
	repo              store.Repository
	pendingStore      pending.Store
	resolver          *banks.Resolver
	matcher           *Matcher
	eventProducer     rabbitmq.Publisher
	pendingLocks      *keyedMutex
	maxPINAttempts    int
	pinLockoutSeconds int
}

// NewService creates a new transfer orchestration service instance.
func NewService(repo store.Repository, pendingStore pending.Store, resolver *banks.Resolver, producer rabbitmq.Publisher, maxPINAttempts, pinLockoutSeconds int) *Service {
	if maxPINAttempts <= 0 {
		maxPINAttempts = DefaultMaxPINAttempts
	}
	return &Service{
		repo:              repo,
		pendingStore:      pendingStore,
		resolver:          resolver,
		matcher:           NewMatcher(repo),
		eventProducer:     producer,
		pendingLocks:      newKeyedMutex(),
		maxPINAttempts:    maxPINAttempts,
		pinLockoutSeconds: pinLockoutSeconds,
	}
}

// InitiateTransfer starts a transfer flow from the intent extractor's parsed
// request. Depending on what still needs disambiguating it either creates a
// pending transaction and asks a follow-up question, or advances straight to
// PIN confirmation.
func (s *Service) InitiateTransfer(ctx context.Context, customerID uuid.UUID, req domain.ParsedRequest) (*domain.FlowResponse, error) {
	log.Printf("InitiateTransfer: customer=%s amount=%d", customerID, req.Amount)

	if req.Amount <= 0 {
		return &domain.FlowResponse{
			Message: "How much would you like to send? Please include an amount, e.g. \"send 5000 to John\".",
		}, nil
	}

	if _, err := s.repo.FindCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}

	accounts, err := s.repo.FindActiveAccountsByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoActiveAccount
	}

	payload := domain.TransferPayload{
		Amount:           req.Amount,
		RecipientName:    req.RecipientName,
		RecipientAccount: req.AccountNumber,
	}

	if len(accounts) > 1 {
		payload.AccountCandidates = accounts
		id, err := s.pendingStore.Create(ctx, domain.PendingTypeTransfer, customerID, payload, domain.StageAccountSelection)
		if err != nil {
			return nil, fmt.Errorf("failed to create pending transaction: %w", err)
		}
		return &domain.FlowResponse{
			Message:              accountPrompt(accounts, req.Amount, ""),
			PendingTransactionID: id,
			RequiredAction:       domain.ActionSelectAccount,
		}, nil
	}

	account := accounts[0]
	if account.Balance < req.Amount {
		return &domain.FlowResponse{
			Message: fmt.Sprintf("Your balance of %s cannot cover %s. Please top up and try again.",
				formatNaira(account.Balance), formatNaira(req.Amount)),
		}, nil
	}
	payload.SourceAccountID = &account.ID

	return s.resolveRecipient(ctx, customerID, payload, nil)
}

// SubmitSelection applies a free-text follow-up reply to a pending
// transaction: an account choice, a recipient name or account number, or a
// beneficiary choice, depending on the stage. Unrecognized replies re-prompt
// without discarding state.
func (s *Service) SubmitSelection(ctx context.Context, pendingID string, customerID uuid.UUID, rawReply string) (*domain.FlowResponse, error) {
	s.pendingLocks.Lock(pendingID)
	defer s.pendingLocks.Unlock(pendingID)

	entry, err := s.pendingStore.Get(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if entry.CustomerID != customerID {
		log.Printf("SubmitSelection: customer=%s attempted pending=%s owned by %s", customerID, pendingID, entry.CustomerID)
		return nil, ErrUnauthorized
	}

	switch entry.Stage {
	case domain.StageAccountSelection:
		return s.applyAccountSelection(ctx, entry, rawReply)
	case domain.StageRecipientResolution:
		return s.applyRecipientReply(ctx, entry, rawReply)
	case domain.StageBeneficiarySelection:
		return s.applyBeneficiarySelection(ctx, entry, rawReply)
	case domain.StagePendingPIN:
		return &domain.FlowResponse{
			Message:              "This transfer is waiting for your transaction PIN.",
			PendingTransactionID: entry.ID,
			RequiredAction:       domain.ActionConfirmPIN,
		}, nil
	default:
		return nil, fmt.Errorf("pending transaction %s has unknown stage %q", entry.ID, entry.Stage)
	}
}

func (s *Service) applyAccountSelection(ctx context.Context, entry *domain.PendingTransaction, rawReply string) (*domain.FlowResponse, error) {
	candidates := entry.Payload.AccountCandidates

	idx, ok := matchAccountReply(rawReply, candidates)
	if !ok {
		return &domain.FlowResponse{
			Message:              accountPrompt(candidates, entry.Payload.Amount, "I didn't catch which account you meant."),
			PendingTransactionID: entry.ID,
			RequiredAction:       domain.ActionSelectAccount,
		}, nil
	}

	// The candidate list is a snapshot from when the flow started; re-read the
	// chosen account so the balance check uses the current state.
	selected, err := s.repo.FindAccountByID(ctx, candidates[idx].ID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return &domain.FlowResponse{
				Message: accountPrompt(candidates, entry.Payload.Amount,
					fmt.Sprintf("The account ending %s is no longer available.", candidates[idx].Last4())),
				PendingTransactionID: entry.ID,
				RequiredAction:       domain.ActionSelectAccount,
			}, nil
		}
		return nil, err
	}
	if selected.Balance < entry.Payload.Amount {
		return &domain.FlowResponse{
			Message: accountPrompt(candidates, entry.Payload.Amount,
				fmt.Sprintf("The account ending %s has only %s.", selected.Last4(), formatNaira(selected.Balance))),
			PendingTransactionID: entry.ID,
			RequiredAction:       domain.ActionSelectAccount,
		}, nil
	}

	entry.Payload.SourceAccountID = &selected.ID
	entry.Payload.AccountCandidates = nil
	return s.resolveRecipient(ctx, entry.CustomerID, entry.Payload, entry)
}

func (s *Service) applyRecipientReply(ctx context.Context, entry *domain.PendingTransaction, rawReply string) (*domain.FlowResponse, error) {
	if accountNumber, ok := extractAccountNumber(rawReply); ok {
		entry.Payload.RecipientAccount = accountNumber
		entry.Payload.RecipientName = ""
		return s.resolveRecipient(ctx, entry.CustomerID, entry.Payload, entry)
	}
	if name := extractNameQuery(rawReply); name != "" {
		entry.Payload.RecipientName = name
		entry.Payload.RecipientAccount = ""
		return s.resolveRecipient(ctx, entry.CustomerID, entry.Payload, entry)
	}
	return &domain.FlowResponse{
		Message:              "Who should receive the money? Reply with a name or a 10-digit account number.",
		PendingTransactionID: entry.ID,
		RequiredAction:       domain.ActionSelectRecipient,
	}, nil
}

func (s *Service) applyBeneficiarySelection(ctx context.Context, entry *domain.PendingTransaction, rawReply string) (*domain.FlowResponse, error) {
	candidates := entry.Payload.RecipientCandidates

	idx, ok := matchRecipientReply(rawReply, candidates)
	if !ok {
		return &domain.FlowResponse{
			Message:              recipientPrompt(candidates, "I didn't catch which recipient you meant."),
			PendingTransactionID: entry.ID,
			RequiredAction:       domain.ActionSelectRecipient,
		}, nil
	}

	return s.bindRecipient(ctx, entry, candidates[idx])
}

// resolveRecipient runs the recipient resolution step once the source account
// is known. `entry` is nil when no pending transaction exists yet; one is
// created only if the flow still needs a follow-up from the customer.
func (s *Service) resolveRecipient(ctx context.Context, customerID uuid.UUID, payload domain.TransferPayload, entry *domain.PendingTransaction) (*domain.FlowResponse, error) {
	if payload.RecipientAccount != "" {
		// In-system account numbers resolve locally, without a verification
		// round-trip.
		account, err := s.repo.FindAccountByNumber(ctx, payload.RecipientAccount)
		if err == nil {
			if payload.SourceAccountID != nil && account.ID == *payload.SourceAccountID {
				payload.RecipientAccount = ""
				return s.stageForRecipient(ctx, customerID, payload, entry,
					"That is the account the money would come from.")
			}
			owner, err := s.repo.FindCustomerByID(ctx, account.CustomerID)
			if err != nil {
				return nil, err
			}
			ownerID := owner.ID
			payload.Recipient = &domain.Recipient{
				Name:          owner.FullName,
				AccountNumber: account.AccountNumber,
				BankName:      account.BankName,
				Origin:        domain.OriginCustomer,
				CustomerID:    &ownerID,
			}
			return s.advanceToPIN(ctx, customerID, payload, entry)
		}
		if !errors.Is(err, store.ErrAccountNotFound) {
			return nil, err
		}

		holder, err := s.resolver.Resolve(ctx, payload.RecipientAccount, "")
		if err != nil {
			log.Printf("resolveRecipient: customer=%s account=%s resolution failed: %v", customerID, payload.RecipientAccount, err)
			payload.RecipientAccount = ""
			return s.stageForRecipient(ctx, customerID, payload, entry,
				"I couldn't verify that account number. Check it and try again, or reply with a name instead.")
		}
		recipient := domain.Recipient{
			Name:          holder.HolderName,
			AccountNumber: holder.AccountNumber,
			BankName:      holder.BankName,
			Origin:        domain.OriginVerified,
		}
		payload.Recipient = &recipient
		return s.advanceToPIN(ctx, customerID, payload, entry)
	}

	if payload.RecipientName != "" {
		candidates, err := s.matcher.Search(ctx, customerID, payload.RecipientName)
		if err != nil {
			return nil, err
		}
		switch len(candidates) {
		case 0:
			if entry != nil {
				s.discardPending(ctx, entry.ID, "no recipient matched")
			}
			return &domain.FlowResponse{
				Message: fmt.Sprintf("I couldn't find anyone named %q. Try a different name or a 10-digit account number.", payload.RecipientName),
			}, nil
		case 1:
			payload.Recipient = &candidates[0]
			return s.advanceToPIN(ctx, customerID, payload, entry)
		default:
			payload.RecipientCandidates = candidates
			id, err := s.createOrUpdatePending(ctx, customerID, payload, entry, domain.StageBeneficiarySelection)
			if err != nil {
				return nil, err
			}
			return &domain.FlowResponse{
				Message:              recipientPrompt(candidates, fmt.Sprintf("I found %d matches for %q.", len(candidates), payload.RecipientName)),
				PendingTransactionID: id,
				RequiredAction:       domain.ActionSelectRecipient,
			}, nil
		}
	}

	return s.stageForRecipient(ctx, customerID, payload, entry, "")
}

// stageForRecipient parks the flow in the recipient resolution stage and asks
// the customer who the money is for.
func (s *Service) stageForRecipient(ctx context.Context, customerID uuid.UUID, payload domain.TransferPayload, entry *domain.PendingTransaction, preamble string) (*domain.FlowResponse, error) {
	id, err := s.createOrUpdatePending(ctx, customerID, payload, entry, domain.StageRecipientResolution)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Who would you like to send %s to? Reply with a name or a 10-digit account number.", formatNaira(payload.Amount))
	if preamble != "" {
		message = preamble + " " + message
	}
	return &domain.FlowResponse{
		Message:              message,
		PendingTransactionID: id,
		RequiredAction:       domain.ActionSelectRecipient,
	}, nil
}

// advanceToPIN binds the resolved recipient and moves the flow to PIN
// confirmation, creating the pending transaction if none exists yet.
func (s *Service) advanceToPIN(ctx context.Context, customerID uuid.UUID, payload domain.TransferPayload, entry *domain.PendingTransaction) (*domain.FlowResponse, error) {
	payload.RecipientCandidates = nil
	id, err := s.createOrUpdatePending(ctx, customerID, payload, entry, domain.StagePendingPIN)
	if err != nil {
		return nil, err
	}
	r := payload.Recipient
	return &domain.FlowResponse{
		Message: fmt.Sprintf("Sending %s to %s (%s ••••%s). Reply with your transaction PIN to confirm.",
			formatNaira(payload.Amount), r.Name, r.BankName, r.Last4()),
		PendingTransactionID: id,
		RequiredAction:       domain.ActionConfirmPIN,
	}, nil
}

func (s *Service) bindRecipient(ctx context.Context, entry *domain.PendingTransaction, recipient domain.Recipient) (*domain.FlowResponse, error) {
	// Saved beneficiaries can be deleted while the flow waits for a reply;
	// re-read the row and bind its current details.
	if recipient.Origin == domain.OriginBeneficiary && recipient.BeneficiaryID != nil {
		beneficiary, err := s.repo.FindBeneficiaryByID(ctx, *recipient.BeneficiaryID, entry.CustomerID)
		if err != nil {
			if errors.Is(err, store.ErrBeneficiaryNotFound) {
				return &domain.FlowResponse{
					Message:              recipientPrompt(entry.Payload.RecipientCandidates, "That saved recipient is no longer available."),
					PendingTransactionID: entry.ID,
					RequiredAction:       domain.ActionSelectRecipient,
				}, nil
			}
			return nil, err
		}
		recipient.Name = beneficiary.Name
		recipient.AccountNumber = beneficiary.AccountNumber
		recipient.BankName = beneficiary.BankName
	}
	entry.Payload.Recipient = &recipient
	return s.advanceToPIN(ctx, entry.CustomerID, entry.Payload, entry)
}

func (s *Service) createOrUpdatePending(ctx context.Context, customerID uuid.UUID, payload domain.TransferPayload, entry *domain.PendingTransaction, stage domain.PendingStage) (string, error) {
	if entry == nil {
		id, err := s.pendingStore.Create(ctx, domain.PendingTypeTransfer, customerID, payload, stage)
		if err != nil {
			return "", fmt.Errorf("failed to create pending transaction: %w", err)
		}
		return id, nil
	}
	entry.Payload = payload
	entry.Stage = stage
	if err := s.pendingStore.Update(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to update pending transaction: %w", err)
	}
	return entry.ID, nil
}

// ConfirmPIN verifies the customer's transaction PIN and, on success, executes
// the transfer. Wrong PINs consume the retry budget; exhausting it discards
// the pending transaction.
func (s *Service) ConfirmPIN(ctx context.Context, pendingID string, customerID uuid.UUID, pin string) (*domain.FlowResponse, error) {
	s.pendingLocks.Lock(pendingID)
	defer s.pendingLocks.Unlock(pendingID)

	entry, err := s.pendingStore.Get(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if entry.CustomerID != customerID {
		log.Printf("ConfirmPIN: customer=%s attempted pending=%s owned by %s", customerID, pendingID, entry.CustomerID)
		return nil, ErrUnauthorized
	}
	if entry.Stage != domain.StagePendingPIN {
		return nil, ErrNotAwaitingPIN
	}
	if entry.Payload.SourceAccountID == nil || entry.Payload.Recipient == nil {
		return nil, fmt.Errorf("pending transaction %s reached pin stage without account or recipient", entry.ID)
	}

	credential, err := s.repo.GetSecurityCredentialByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if pinLocked(credential, time.Now()) {
		return nil, ErrPINLocked
	}

	if !checkPIN(credential.PINHash, pin) {
		return s.handleWrongPIN(ctx, entry)
	}

	if err := s.repo.ResetPINFailureState(ctx, customerID); err != nil {
		log.Printf("ConfirmPIN: failed to reset pin failure state for customer %s: %v", customerID, err)
	}

	return s.execute(ctx, entry)
}

func (s *Service) handleWrongPIN(ctx context.Context, entry *domain.PendingTransaction) (*domain.FlowResponse, error) {
	attempts := entry.Payload.PINAttempts + 1

	if _, err := s.repo.RecordFailedPINAttempt(ctx, entry.CustomerID, s.maxPINAttempts, s.pinLockoutSeconds); err != nil {
		log.Printf("handleWrongPIN: failed to record pin attempt for customer %s: %v", entry.CustomerID, err)
	}

	if attempts >= s.maxPINAttempts {
		s.discardPending(ctx, entry.ID, fmt.Sprintf("%d failed PIN attempts", attempts))
		return nil, ErrPINAttemptsExhausted
	}

	entry.Payload.PINAttempts = attempts
	if err := s.pendingStore.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update pending transaction: %w", err)
	}
	remaining := s.maxPINAttempts - attempts
	return &domain.FlowResponse{
		Message:              fmt.Sprintf("Incorrect PIN. You have %d attempt(s) left.", remaining),
		PendingTransactionID: entry.ID,
		RequiredAction:       domain.ActionConfirmPIN,
	}, nil
}

func (s *Service) execute(ctx context.Context, entry *domain.PendingTransaction) (*domain.FlowResponse, error) {
	params := store.TransferParams{
		CustomerID:      entry.CustomerID,
		SourceAccountID: *entry.Payload.SourceAccountID,
		Recipient:       *entry.Payload.Recipient,
		Amount:          entry.Payload.Amount,
	}

	debit, err := s.repo.ExecuteTransfer(ctx, params)

	// Completed or failed, the pending transaction is finished either way.
	s.discardPending(ctx, entry.ID, "execution finished")

	if err != nil {
		log.Printf("execute: pending=%s customer=%s transfer failed: %v", entry.ID, entry.CustomerID, err)
		s.publishTransferEvent(ctx, rabbitmq.RoutingKeyTransferFailed, rabbitmq.TransferEvent{
			CustomerID:          entry.CustomerID.String(),
			Amount:              entry.Payload.Amount,
			CounterpartyName:    entry.Payload.Recipient.Name,
			CounterpartyAccount: entry.Payload.Recipient.AccountNumber,
			CounterpartyBank:    entry.Payload.Recipient.BankName,
			Status:              "failed",
			OccurredAt:          time.Now().UTC(),
		})
		return nil, err
	}

	s.publishTransferEvent(ctx, rabbitmq.RoutingKeyTransferExecuted, rabbitmq.TransferEvent{
		Reference:           debit.Reference,
		CustomerID:          entry.CustomerID.String(),
		Amount:              debit.Amount,
		CounterpartyName:    debit.CounterpartyName,
		CounterpartyAccount: debit.CounterpartyAccount,
		CounterpartyBank:    debit.CounterpartyBank,
		Status:              debit.Status,
		OccurredAt:          time.Now().UTC(),
	})

	return &domain.FlowResponse{
		Message: fmt.Sprintf("Transfer successful! %s sent to %s. Ref: %s",
			formatNaira(debit.Amount), debit.CounterpartyName, debit.Reference),
		Executed:  true,
		Reference: debit.Reference,
	}, nil
}

// InternalTransfer moves money between two of the customer's own accounts.
func (s *Service) InternalTransfer(ctx context.Context, customerID, sourceAccountID, targetAccountID uuid.UUID, amount int64) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	log.Printf("InternalTransfer: customer=%s from=%s to=%s amount=%d", customerID, sourceAccountID, targetAccountID, amount)

	debit, err := s.repo.ExecuteInternalTransfer(ctx, customerID, sourceAccountID, targetAccountID, amount)
	if err != nil {
		return nil, err
	}

	s.publishTransferEvent(ctx, rabbitmq.RoutingKeyTransferExecuted, rabbitmq.TransferEvent{
		Reference:           debit.Reference,
		CustomerID:          customerID.String(),
		Amount:              debit.Amount,
		CounterpartyName:    debit.CounterpartyName,
		CounterpartyAccount: debit.CounterpartyAccount,
		CounterpartyBank:    debit.CounterpartyBank,
		Status:              debit.Status,
		OccurredAt:          time.Now().UTC(),
	})
	return debit, nil
}

// ListTransfers returns the customer's ledger entries, most recent first.
func (s *Service) ListTransfers(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, error) {
	return s.repo.FindLedgerEntriesByCustomerID(ctx, customerID, limit, offset)
}

func (s *Service) discardPending(ctx context.Context, pendingID, reason string) {
	if err := s.pendingStore.Delete(ctx, pendingID); err != nil {
		log.Printf("discardPending: failed to delete pending transaction %s: %v", pendingID, err)
		return
	}
	log.Printf("discardPending: pending transaction %s discarded (%s)", pendingID, reason)
}

func (s *Service) publishTransferEvent(ctx context.Context, routingKey string, event rabbitmq.TransferEvent) {
	if s.eventProducer == nil {
		return
	}
	if err := s.eventProducer.PublishTransferEvent(ctx, routingKey, event); err != nil {
		log.Printf("publishTransferEvent: failed to publish %s: %v", routingKey, err)
	}
}

// matchAccountReply resolves a free-text reply to one of the listed accounts,
// by last-4 digits first, then by ordinal position.
func matchAccountReply(rawReply string, candidates []domain.Account) (int, bool) {
	if last4, ok := extractLastFour(rawReply); ok {
		for i, c := range candidates {
			if c.Last4() == last4 {
				return i, true
			}
		}
	}
	return extractOrdinal(rawReply, len(candidates))
}

func matchRecipientReply(rawReply string, candidates []domain.Recipient) (int, bool) {
	if last4, ok := extractLastFour(rawReply); ok {
		for i, c := range candidates {
			if c.Last4() == last4 {
				return i, true
			}
		}
	}
	return extractOrdinal(rawReply, len(candidates))
}

func accountPrompt(accounts []domain.Account, amount int64, preamble string) string {
	msg := fmt.Sprintf("Which account should fund the %s transfer?", formatNaira(amount))
	if preamble != "" {
		msg = preamble + " " + msg
	}
	for i, a := range accounts {
		msg += fmt.Sprintf("\n%d. %s ••••%s (%s)", i+1, a.BankName, a.Last4(), formatNaira(a.Balance))
	}
	msg += "\nReply with the last 4 digits or a position, e.g. \"first\"."
	return msg
}

func recipientPrompt(candidates []domain.Recipient, preamble string) string {
	msg := "Who did you mean?"
	if preamble != "" {
		msg = preamble + " " + msg
	}
	for i, c := range candidates {
		msg += fmt.Sprintf("\n%d. %s - %s ••••%s", i+1, c.Name, c.BankName, c.Last4())
	}
	msg += "\nReply with the last 4 digits or a position, e.g. \"second\"."
	return msg
}

// formatNaira renders a kobo amount as a naira string with thousands
// separators, e.g. 1250050 -> "₦12,500.50".
func formatNaira(kobo int64) string {
	naira := kobo / 100
	rem := kobo % 100
	digits := strconv.FormatInt(naira, 10)

	var grouped []byte
	for i := 0; i < len(digits); i++ {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, digits[i])
	}
	return fmt.Sprintf("₦%s.%02d", grouped, rem)
}
