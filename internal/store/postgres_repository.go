/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the SQL needed for customers, accounts, beneficiaries, the
 * recipient-matcher source queries, transaction PIN security state, and the
 * atomic double-entry ledger executor.
 *
 * @dependencies
 * - context, errors, fmt: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/swiftsend/transfer-service/internal/domain"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSameAccount         = errors.New("source and target accounts are the same")
	ErrPINNotSet           = errors.New("transaction pin not set")
)

// The external sink is the single synthetic customer/account pair credited for
// recipients outside this system, preserving the double-entry invariant. Its
// phone and account number are reserved values guarded by unique constraints,
// so concurrent first-use cannot create duplicates.
const (
	externalSinkName          = "External Settlement"
	externalSinkPhone         = "external-settlement"
	externalSinkAccountNumber = "0000000000"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindCustomerByID retrieves a customer by id, excluding soft-deleted rows.
func (r *PostgresRepository) FindCustomerByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	query := `SELECT id, full_name, phone, COALESCE(pin_hash, '') FROM customers WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.QueryRow(ctx, query, customerID).Scan(&customer.ID, &customer.FullName, &customer.Phone, &customer.PINHash)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAccountByID retrieves one active account by id.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT id, customer_id, account_number, balance, currency, bank_name
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL
	`
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&account.ID, &account.CustomerID, &account.AccountNumber,
		&account.Balance, &account.Currency, &account.BankName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindActiveAccountsByCustomerID retrieves a customer's funding accounts,
// oldest first so selection ordinals are stable across prompts.
func (r *PostgresRepository) FindActiveAccountsByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error) {
	query := `
		SELECT id, customer_id, account_number, balance, currency, bank_name
		FROM accounts
		WHERE customer_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID, &account.CustomerID, &account.AccountNumber,
			&account.Balance, &account.Currency, &account.BankName,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// FindAccountByNumber retrieves an active account by its 10-digit number.
func (r *PostgresRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT id, customer_id, account_number, balance, currency, bank_name
		FROM accounts
		WHERE account_number = $1 AND deleted_at IS NULL
	`
	err := r.db.QueryRow(ctx, query, accountNumber).Scan(
		&account.ID, &account.CustomerID, &account.AccountNumber,
		&account.Balance, &account.Currency, &account.BankName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindBeneficiaryByID retrieves a specific beneficiary owned by a customer.
func (r *PostgresRepository) FindBeneficiaryByID(ctx context.Context, beneficiaryID uuid.UUID, customerID uuid.UUID) (*domain.Beneficiary, error) {
	var beneficiary domain.Beneficiary
	query := `
		SELECT id, customer_id, name, account_number, bank_name, usage_count, last_used_at, created_at
		FROM beneficiaries
		WHERE id = $1 AND customer_id = $2 AND deleted_at IS NULL
	`
	err := r.db.QueryRow(ctx, query, beneficiaryID, customerID).Scan(
		&beneficiary.ID, &beneficiary.CustomerID, &beneficiary.Name,
		&beneficiary.AccountNumber, &beneficiary.BankName,
		&beneficiary.UsageCount, &beneficiary.LastUsedAt, &beneficiary.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBeneficiaryNotFound
		}
		return nil, err
	}
	return &beneficiary, nil
}

// FindBeneficiariesMatching retrieves a customer's saved beneficiaries whose
// name contains the pattern, most used first.
func (r *PostgresRepository) FindBeneficiariesMatching(ctx context.Context, customerID uuid.UUID, namePattern string, limit int) ([]domain.Beneficiary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, customer_id, name, account_number, bank_name, usage_count, last_used_at, created_at
		FROM beneficiaries
		WHERE customer_id = $1
		  AND name ILIKE '%' || $2 || '%'
		  AND deleted_at IS NULL
		ORDER BY usage_count DESC, created_at ASC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, customerID, namePattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var beneficiaries []domain.Beneficiary
	for rows.Next() {
		var beneficiary domain.Beneficiary
		if err := rows.Scan(
			&beneficiary.ID, &beneficiary.CustomerID, &beneficiary.Name,
			&beneficiary.AccountNumber, &beneficiary.BankName,
			&beneficiary.UsageCount, &beneficiary.LastUsedAt, &beneficiary.CreatedAt,
		); err != nil {
			return nil, err
		}
		beneficiaries = append(beneficiaries, beneficiary)
	}
	return beneficiaries, rows.Err()
}

// FindCustomersMatching retrieves other customers whose name contains the
// pattern and who have at least one active account, paired with their first
// active account. The external sink customer never matches real names but is
// excluded anyway.
func (r *PostgresRepository) FindCustomersMatching(ctx context.Context, namePattern string, excludeCustomerID uuid.UUID, limit int) ([]CustomerWithAccount, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT c.id, c.full_name, c.phone, a.id, a.customer_id, a.account_number, a.balance, a.currency, a.bank_name
		FROM customers c
		JOIN LATERAL (
			SELECT id, customer_id, account_number, balance, currency, bank_name
			FROM accounts
			WHERE customer_id = c.id AND deleted_at IS NULL
			ORDER BY created_at ASC
			LIMIT 1
		) a ON true
		WHERE c.id <> $1
		  AND c.phone <> $2
		  AND c.full_name ILIKE '%' || $3 || '%'
		  AND c.deleted_at IS NULL
		ORDER BY c.full_name ASC
		LIMIT $4
	`
	rows, err := r.db.Query(ctx, query, excludeCustomerID, externalSinkPhone, namePattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []CustomerWithAccount
	for rows.Next() {
		var m CustomerWithAccount
		if err := rows.Scan(
			&m.Customer.ID, &m.Customer.FullName, &m.Customer.Phone,
			&m.Account.ID, &m.Account.CustomerID, &m.Account.AccountNumber,
			&m.Account.Balance, &m.Account.Currency, &m.Account.BankName,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// FindHistoryCounterpartiesMatching retrieves past transfer counterparties of
// the customer whose recorded name contains the pattern, most recent first,
// deduplicated per (account number, bank).
func (r *PostgresRepository) FindHistoryCounterpartiesMatching(ctx context.Context, customerID uuid.UUID, namePattern string, limit int) ([]HistoryCounterparty, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT counterparty_name, counterparty_account, counterparty_bank, created_at
		FROM (
			SELECT DISTINCT ON (counterparty_account, counterparty_bank)
			       counterparty_name, counterparty_account, counterparty_bank, created_at
			FROM ledger_entries
			WHERE customer_id = $1
			  AND direction = 'debit'
			  AND counterparty_name ILIKE '%' || $2 || '%'
			  AND deleted_at IS NULL
			ORDER BY counterparty_account, counterparty_bank, created_at DESC
		) latest
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, customerID, namePattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counterparties []HistoryCounterparty
	for rows.Next() {
		var c HistoryCounterparty
		var lastSeen time.Time
		if err := rows.Scan(&c.Name, &c.AccountNumber, &c.BankName, &lastSeen); err != nil {
			return nil, err
		}
		counterparties = append(counterparties, c)
	}
	return counterparties, rows.Err()
}

// GetSecurityCredentialByCustomerID returns transaction PIN security metadata for a customer.
func (r *PostgresRepository) GetSecurityCredentialByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.CustomerSecurityCredential, error) {
	var credential domain.CustomerSecurityCredential
	query := `
		SELECT customer_id, COALESCE(pin_hash, ''), failed_attempts, locked_until
		FROM customer_security_credentials
		WHERE customer_id = $1
	`
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&credential.CustomerID,
		&credential.PINHash,
		&credential.FailedAttempts,
		&credential.LockedUntil,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPINNotSet
		}
		return nil, err
	}
	if credential.PINHash == "" {
		return nil, ErrPINNotSet
	}
	return &credential, nil
}

// RecordFailedPINAttempt atomically increments failed attempts and applies lockout.
func (r *PostgresRepository) RecordFailedPINAttempt(ctx context.Context, customerID uuid.UUID, maxAttempts int, lockoutSeconds int) (*domain.CustomerSecurityCredential, error) {
	var credential domain.CustomerSecurityCredential
	query := `
		UPDATE customer_security_credentials
		SET
			failed_attempts = CASE
				WHEN (locked_until IS NOT NULL AND locked_until <= NOW())
					OR (locked_until IS NULL AND failed_attempts >= $2) THEN 1
				ELSE failed_attempts + 1
			END,
			last_failed_at = NOW(),
			locked_until = CASE
				WHEN (
					CASE
						WHEN (locked_until IS NOT NULL AND locked_until <= NOW())
							OR (locked_until IS NULL AND failed_attempts >= $2) THEN 1
						ELSE failed_attempts + 1
					END
				) >= $2 THEN NOW() + ($3 * INTERVAL '1 second')
				ELSE NULL
			END
		WHERE customer_id = $1
		RETURNING customer_id, COALESCE(pin_hash, ''), failed_attempts, locked_until
	`
	err := r.db.QueryRow(ctx, query, customerID, maxAttempts, lockoutSeconds).Scan(
		&credential.CustomerID,
		&credential.PINHash,
		&credential.FailedAttempts,
		&credential.LockedUntil,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPINNotSet
		}
		return nil, err
	}
	return &credential, nil
}

// ResetPINFailureState clears failed-attempt counters after a successful PIN verification.
func (r *PostgresRepository) ResetPINFailureState(ctx context.Context, customerID uuid.UUID) error {
	query := `
		UPDATE customer_security_credentials
		SET failed_attempts = 0, last_failed_at = NULL, locked_until = NULL
		WHERE customer_id = $1
	`
	result, err := r.db.Exec(ctx, query, customerID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPINNotSet
	}
	return nil
}

// FindLedgerEntriesByCustomerID retrieves a customer's ledger entries, most recent first.
func (r *PostgresRepository) FindLedgerEntriesByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, customer_id, account_id, counterparty_name, counterparty_bank, counterparty_account,
		       amount, balance_before, balance_after, direction, status, reference, created_at
		FROM ledger_entries
		WHERE customer_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.CustomerID, &e.AccountID,
			&e.CounterpartyName, &e.CounterpartyBank, &e.CounterpartyAccount,
			&e.Amount, &e.BalanceBefore, &e.BalanceAfter,
			&e.Direction, &e.Status, &e.Reference, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func insertLedgerEntry(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (
			id, customer_id, account_id,
			counterparty_name, counterparty_bank, counterparty_account,
			amount, balance_before, balance_after,
			direction, status, reference
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	return tx.QueryRow(ctx, query,
		entry.ID, entry.CustomerID, entry.AccountID,
		entry.CounterpartyName, entry.CounterpartyBank, entry.CounterpartyAccount,
		entry.Amount, entry.BalanceBefore, entry.BalanceAfter,
		entry.Direction, entry.Status, entry.Reference,
	).Scan(&entry.CreatedAt)
}

// conditionalDebit decrements the account balance only when it covers the
// amount, in a single UPDATE, and returns the resulting balance. This is the
// overdraft guard: two concurrent transfers cannot both pass the check.
func conditionalDebit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64) (balanceAfter int64, err error) {
	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL AND balance >= $1
		RETURNING balance
	`
	err = tx.QueryRow(ctx, query, amount, accountID).Scan(&balanceAfter)
	if err == pgx.ErrNoRows {
		// Distinguish a missing account from an insufficient balance.
		var exists bool
		if checkErr := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1 AND deleted_at IS NULL)", accountID,
		).Scan(&exists); checkErr != nil {
			return 0, checkErr
		}
		if !exists {
			return 0, ErrAccountNotFound
		}
		return 0, ErrInsufficientFunds
	}
	return balanceAfter, err
}

func creditAccount(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64) (balanceAfter int64, err error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING balance
	`
	err = tx.QueryRow(ctx, query, amount, accountID).Scan(&balanceAfter)
	if err == pgx.ErrNoRows {
		return 0, ErrAccountNotFound
	}
	return balanceAfter, err
}

// resolveCreditTarget finds or creates the account to credit, inside the
// executor's transaction:
//   - a recipient account number held in this system is credited directly;
//   - a known customer with no active account gets a zero-balance account;
//   - anything else is settled against the idempotent external sink.
func resolveCreditTarget(ctx context.Context, tx pgx.Tx, recipient domain.Recipient) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT id, customer_id, account_number, balance, currency, bank_name
		FROM accounts
		WHERE account_number = $1 AND deleted_at IS NULL
	`
	err := tx.QueryRow(ctx, query, recipient.AccountNumber).Scan(
		&account.ID, &account.CustomerID, &account.AccountNumber,
		&account.Balance, &account.Currency, &account.BankName,
	)
	if err == nil {
		return &account, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	if recipient.CustomerID != nil {
		return createZeroBalanceAccount(ctx, tx, *recipient.CustomerID, recipient)
	}
	return findOrCreateExternalSinkAccount(ctx, tx)
}

func createZeroBalanceAccount(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, recipient domain.Recipient) (*domain.Account, error) {
	accountNumber := recipient.AccountNumber
	if len(accountNumber) != 10 {
		accountNumber = generatedAccountNumber()
	}

	var account domain.Account
	query := `
		INSERT INTO accounts (id, customer_id, account_number, balance, currency, bank_name)
		VALUES ($1, $2, $3, 0, 'NGN', $4)
		RETURNING id, customer_id, account_number, balance, currency, bank_name
	`
	err := tx.QueryRow(ctx, query, uuid.New(), customerID, accountNumber, recipient.BankName).Scan(
		&account.ID, &account.CustomerID, &account.AccountNumber,
		&account.Balance, &account.Currency, &account.BankName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient account: %w", err)
	}
	return &account, nil
}

// findOrCreateExternalSinkAccount returns the system-wide external settlement
// account, creating the customer/account pair on first use. ON CONFLICT on the
// reserved phone and account number makes concurrent first-use race-safe: the
// loser of the race simply reads the winner's row.
func findOrCreateExternalSinkAccount(ctx context.Context, tx pgx.Tx) (*domain.Account, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO customers (id, full_name, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO NOTHING
	`, uuid.New(), externalSinkName, externalSinkPhone); err != nil {
		return nil, err
	}

	var sinkCustomerID uuid.UUID
	if err := tx.QueryRow(ctx, "SELECT id FROM customers WHERE phone = $1", externalSinkPhone).Scan(&sinkCustomerID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO accounts (id, customer_id, account_number, balance, currency, bank_name)
		VALUES ($1, $2, $3, 0, 'NGN', $4)
		ON CONFLICT (account_number) DO NOTHING
	`, uuid.New(), sinkCustomerID, externalSinkAccountNumber, externalSinkName); err != nil {
		return nil, err
	}

	var account domain.Account
	err := tx.QueryRow(ctx, `
		SELECT id, customer_id, account_number, balance, currency, bank_name
		FROM accounts
		WHERE account_number = $1
	`, externalSinkAccountNumber).Scan(
		&account.ID, &account.CustomerID, &account.AccountNumber,
		&account.Balance, &account.Currency, &account.BankName,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func generatedAccountNumber() string {
	id := uuid.New()
	digits := make([]byte, 10)
	for i := 0; i < 10; i++ {
		digits[i] = '0' + id[i]%10
	}
	return string(digits)
}

// ExecuteTransfer performs the atomic double-entry transfer. The whole
// sequence runs in one database transaction; any failure after the debit rolls
// back every write, so a debit entry is never persisted without its matching
// credit. The returned debit entry is the transfer receipt.
func (r *PostgresRepository) ExecuteTransfer(ctx context.Context, params TransferParams) (*domain.LedgerEntry, error) {
	if params.Amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive, got %d", params.Amount)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var sender struct {
		fullName      string
		accountNumber string
		bankName      string
		customerID    uuid.UUID
	}
	err = tx.QueryRow(ctx, `
		SELECT c.full_name, a.account_number, a.bank_name, a.customer_id
		FROM accounts a
		JOIN customers c ON c.id = a.customer_id
		WHERE a.id = $1 AND a.deleted_at IS NULL
	`, params.SourceAccountID).Scan(&sender.fullName, &sender.accountNumber, &sender.bankName, &sender.customerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if sender.customerID != params.CustomerID {
		return nil, ErrAccountNotFound
	}

	// The balance is re-validated here, at execution time, not at selection
	// time; the conditional UPDATE closes the gap between the two.
	debitAfter, err := conditionalDebit(ctx, tx, params.SourceAccountID, params.Amount)
	if err != nil {
		return nil, err
	}

	correlation := uuid.NewString()
	debitEntry := &domain.LedgerEntry{
		ID:                  uuid.New(),
		CustomerID:          params.CustomerID,
		AccountID:           params.SourceAccountID,
		CounterpartyName:    params.Recipient.Name,
		CounterpartyBank:    params.Recipient.BankName,
		CounterpartyAccount: params.Recipient.AccountNumber,
		Amount:              params.Amount,
		BalanceBefore:       debitAfter + params.Amount,
		BalanceAfter:        debitAfter,
		Direction:           domain.DirectionDebit,
		Status:              domain.StatusCompleted,
		Reference:           fmt.Sprintf("TRF-%s-D", correlation),
	}
	if err := insertLedgerEntry(ctx, tx, debitEntry); err != nil {
		return nil, err
	}

	creditTarget, err := resolveCreditTarget(ctx, tx, params.Recipient)
	if err != nil {
		return nil, err
	}
	creditAfter, err := creditAccount(ctx, tx, creditTarget.ID, params.Amount)
	if err != nil {
		return nil, err
	}

	creditEntry := &domain.LedgerEntry{
		ID:                  uuid.New(),
		CustomerID:          creditTarget.CustomerID,
		AccountID:           creditTarget.ID,
		CounterpartyName:    sender.fullName,
		CounterpartyBank:    sender.bankName,
		CounterpartyAccount: sender.accountNumber,
		Amount:              params.Amount,
		BalanceBefore:       creditAfter - params.Amount,
		BalanceAfter:        creditAfter,
		Direction:           domain.DirectionCredit,
		Status:              domain.StatusCompleted,
		Reference:           fmt.Sprintf("TRF-%s-C", correlation),
	}
	if err := insertLedgerEntry(ctx, tx, creditEntry); err != nil {
		return nil, err
	}

	if params.Recipient.BeneficiaryID != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE beneficiaries
			SET usage_count = usage_count + 1, last_used_at = NOW()
			WHERE id = $1 AND customer_id = $2 AND deleted_at IS NULL
		`, *params.Recipient.BeneficiaryID, params.CustomerID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return debitEntry, nil
}

// ExecuteInternalTransfer moves money between two accounts owned by the same
// customer as a symmetric debit/credit pair in one transaction.
func (r *PostgresRepository) ExecuteInternalTransfer(ctx context.Context, customerID, sourceAccountID, targetAccountID uuid.UUID, amount int64) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	if sourceAccountID == targetAccountID {
		return nil, ErrSameAccount
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	loadOwned := func(accountID uuid.UUID) (*domain.Account, error) {
		var account domain.Account
		err := tx.QueryRow(ctx, `
			SELECT id, customer_id, account_number, balance, currency, bank_name
			FROM accounts
			WHERE id = $1 AND customer_id = $2 AND deleted_at IS NULL
		`, accountID, customerID).Scan(
			&account.ID, &account.CustomerID, &account.AccountNumber,
			&account.Balance, &account.Currency, &account.BankName,
		)
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		if err != nil {
			return nil, err
		}
		return &account, nil
	}

	source, err := loadOwned(sourceAccountID)
	if err != nil {
		return nil, err
	}
	target, err := loadOwned(targetAccountID)
	if err != nil {
		return nil, err
	}

	debitAfter, err := conditionalDebit(ctx, tx, source.ID, amount)
	if err != nil {
		return nil, err
	}
	creditAfter, err := creditAccount(ctx, tx, target.ID, amount)
	if err != nil {
		return nil, err
	}

	correlation := uuid.NewString()
	debitEntry := &domain.LedgerEntry{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		AccountID:           source.ID,
		CounterpartyName:    "Own account",
		CounterpartyBank:    target.BankName,
		CounterpartyAccount: target.AccountNumber,
		Amount:              amount,
		BalanceBefore:       debitAfter + amount,
		BalanceAfter:        debitAfter,
		Direction:           domain.DirectionDebit,
		Status:              domain.StatusCompleted,
		Reference:           fmt.Sprintf("INT-%s-D", correlation),
	}
	if err := insertLedgerEntry(ctx, tx, debitEntry); err != nil {
		return nil, err
	}

	creditEntry := &domain.LedgerEntry{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		AccountID:           target.ID,
		CounterpartyName:    "Own account",
		CounterpartyBank:    source.BankName,
		CounterpartyAccount: source.AccountNumber,
		Amount:              amount,
		BalanceBefore:       creditAfter - amount,
		BalanceAfter:        creditAfter,
		Direction:           domain.DirectionCredit,
		Status:              domain.StatusCompleted,
		Reference:           fmt.Sprintf("INT-%s-C", correlation),
	}
	if err := insertLedgerEntry(ctx, tx, creditEntry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return debitEntry, nil
}
