/**
 * @description
 * This file is the narrow raw-text adapter behind the orchestrator. The intent
 * extractor normally hands us a structured ParsedRequest, but follow-up replies
 * ("the second one", "use 2222", a pasted account number) arrive as free text
 * and are decoded here, never inline in the state transitions.
 *
 * @dependencies
 * - regexp, strconv, strings: Standard Go libraries.
 */

package app

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/swiftsend/transfer-service/internal/domain"
)

var (
	accountNumberPattern = regexp.MustCompile(`\b(\d{10})\b`)
	lastFourPattern      = regexp.MustCompile(`\b(\d{4})\b`)
	amountPattern        = regexp.MustCompile(`(?i)(?:₦|ngn\s*)?(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d{1,2}))?\b`)
	ordinalDigitPattern  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\b`)
)

// ordinalWords is ordered so a reply naming several ordinals resolves to the
// lowest one deterministically.
var ordinalWords = []struct {
	word string
	n    int
}{
	{"first", 1}, {"second", 2}, {"third", 3}, {"fourth", 4}, {"fifth", 5},
	{"sixth", 6}, {"seventh", 7}, {"eighth", 8}, {"ninth", 9}, {"tenth", 10},
}

// ParseTransferText is the local fallback used when no intent extractor is
// configured: it reads an amount, an account number and a name fragment
// straight out of the raw message.
func ParseTransferText(text string) domain.ParsedRequest {
	var req domain.ParsedRequest
	if accountNumber, ok := extractAccountNumber(text); ok {
		req.AccountNumber = accountNumber
	}
	if amount, ok := parseAmountKobo(accountNumberPattern.ReplaceAllString(text, " ")); ok {
		req.Amount = amount
	}
	req.RecipientName = extractNameQuery(text)
	req.Confidence = 0.5
	return req
}

// parseAmountKobo extracts a money amount from free text and returns it in
// kobo. "5,000", "₦5000" and "5000.50" all parse; the integer math avoids
// float rounding on the kobo part.
func parseAmountKobo(text string) (int64, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	naira, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	var kobo int64
	if m[2] != "" {
		frac := m[2]
		if len(frac) == 1 {
			frac += "0"
		}
		kobo, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, false
		}
	}
	return naira*100 + kobo, true
}

// extractAccountNumber returns the first standalone 10-digit run in the text.
func extractAccountNumber(text string) (string, bool) {
	m := accountNumberPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractLastFour returns the first standalone 4-digit run in the text. A
// 10-digit account number is stripped first so its inner digits do not
// masquerade as a last-4 reference.
func extractLastFour(text string) (string, bool) {
	stripped := accountNumberPattern.ReplaceAllString(text, " ")
	m := lastFourPattern.FindStringSubmatch(stripped)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractOrdinal maps "first", "2", "2nd" to a zero-based index, bounded by
// max. Four-digit runs are excluded so a last-4 reply is never misread as an
// ordinal.
func extractOrdinal(text string, max int) (int, bool) {
	lower := strings.ToLower(text)
	for _, ordinal := range ordinalWords {
		if strings.Contains(lower, ordinal.word) && ordinal.n <= max {
			return ordinal.n - 1, true
		}
	}
	for _, m := range ordinalDigitPattern.FindAllStringSubmatch(lower, -1) {
		if len(m[1]) >= 4 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= max {
			return n - 1, true
		}
	}
	return 0, false
}

// extractNameQuery strips amounts, account numbers, currency noise and filler
// words, leaving the fragment worth matching recipients against.
func extractNameQuery(text string) string {
	cleaned := accountNumberPattern.ReplaceAllString(text, " ")
	cleaned = amountPattern.ReplaceAllString(cleaned, " ")

	var kept []string
	for _, word := range strings.Fields(cleaned) {
		switch strings.ToLower(strings.Trim(word, ".,!?")) {
		case "send", "transfer", "pay", "to", "naira", "ngn", "₦", "please", "the", "a", "an", "for", "money":
			continue
		}
		kept = append(kept, strings.Trim(word, ".,!?"))
	}
	return strings.Join(kept, " ")
}
