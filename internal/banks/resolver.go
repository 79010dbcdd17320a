/**
 * @description
 * This file implements account-number-to-bank resolution. Given a raw 10-digit
 * account number it computes checksum-valid candidate banks and drives the
 * external verification service through a fallback chain: explicit institution
 * code first, then checksum candidates in catalog order, then the well-known
 * fintech institutions for fintech-style account prefixes.
 */

package banks

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/swiftsend/transfer-service/internal/domain"
)

// ErrAccountNotResolvable is returned when every verification attempt failed
// or no candidate institution existed for the account number.
var ErrAccountNotResolvable = errors.New("account not resolvable")

// Fintech account numbers are commonly derived from phone numbers, so their
// first two digits fall in a narrow range and their checksum rarely matches a
// deposit-money bank.
var fintechPrefixes = map[string]bool{
	"90": true,
	"91": true,
}

// Institution codes attempted for fintech-style account numbers after the
// checksum candidates are exhausted.
var fintechFallbackCodes = []string{
	"100004", // OPay
	"100033", // PalmPay
}

// Verifier confirms an (account number, institution code) pair against a real
// bank and returns the registered holder details.
type Verifier interface {
	VerifyAccount(ctx context.Context, accountNumber, institutionCode string) (*domain.VerifiedAccountHolder, error)
}

// Resolver resolves raw account numbers to verified account holders.
type Resolver struct {
	verifier Verifier
}

// NewResolver creates a Resolver backed by the given verification service.
func NewResolver(verifier Verifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve verifies an account number. When an institution code is supplied the
// verification service is called directly with it; otherwise the checksum
// candidates are attempted in catalog order, then the fintech fallback codes
// when the account number carries a fintech-style prefix.
func (r *Resolver) Resolve(ctx context.Context, accountNumber, institutionCode string) (*domain.VerifiedAccountHolder, error) {
	if len(accountNumber) != 10 || !allDigits(accountNumber) {
		return nil, fmt.Errorf("%w: account number must be 10 digits", ErrAccountNotResolvable)
	}

	if institutionCode != "" {
		holder, err := r.verifier.VerifyAccount(ctx, accountNumber, institutionCode)
		if err != nil {
			return nil, err
		}
		return withBankName(holder, institutionCode), nil
	}

	var lastErr error
	attempted := 0

	for _, candidate := range DetectCandidates(accountNumber) {
		attempted++
		holder, err := r.verifier.VerifyAccount(ctx, accountNumber, candidate.Code)
		if err == nil {
			return withBankName(holder, candidate.Code), nil
		}
		log.Printf("level=info component=account_resolver msg=\"candidate verification failed\" account_suffix=%s bank_code=%s err=%v",
			accountNumber[6:], candidate.Code, err)
		lastErr = err
	}

	if fintechPrefixes[accountNumber[:2]] {
		for _, code := range fintechFallbackCodes {
			attempted++
			holder, err := r.verifier.VerifyAccount(ctx, accountNumber, code)
			if err == nil {
				return withBankName(holder, code), nil
			}
			log.Printf("level=info component=account_resolver msg=\"fintech fallback verification failed\" account_suffix=%s bank_code=%s err=%v",
				accountNumber[6:], code, err)
			lastErr = err
		}
	}

	if attempted == 0 {
		return nil, fmt.Errorf("%w: no candidate institution for account number", ErrAccountNotResolvable)
	}
	return nil, fmt.Errorf("%w: %v", ErrAccountNotResolvable, lastErr)
}

// withBankName fills in a missing bank name from the catalog; some
// verification backends return only the institution code.
func withBankName(holder *domain.VerifiedAccountHolder, code string) *domain.VerifiedAccountHolder {
	if holder.BankName == "" {
		holder.BankName = NameForCode(code)
	}
	if holder.BankCode == "" {
		holder.BankCode = code
	}
	return holder
}
