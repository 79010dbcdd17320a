package banks

// NUBAN check-digit weights. The cycle repeats by position so institution
// codes of varying length (3-digit banks, 6-digit fintechs) share one rule.
var nubanWeights = []int{3, 7, 3, 3, 7, 3, 3, 7, 3, 3, 7, 3}

// ChecksumValid reports whether a 10-digit account number carries a valid
// NUBAN check digit for the given institution code. The serial is the
// institution code followed by the first 9 digits of the account number; each
// digit is weighted by its position in the repeating cycle, and the check
// digit is (10 - sum mod 10) mod 10, compared against the account number's
// 10th digit.
func ChecksumValid(accountNumber, institutionCode string) bool {
	if len(accountNumber) != 10 || !allDigits(accountNumber) || !allDigits(institutionCode) || institutionCode == "" {
		return false
	}

	serial := institutionCode + accountNumber[:9]
	sum := 0
	for i, c := range serial {
		sum += int(c-'0') * nubanWeights[i%len(nubanWeights)]
	}
	check := (10 - sum%10) % 10

	return check == int(accountNumber[9]-'0')
}

// DetectCandidates returns every catalog entry whose institution code yields a
// valid checksum for the account number, in catalog order. Normally zero or
// one, but checksum collisions across institutions are possible.
func DetectCandidates(accountNumber string) []Bank {
	var candidates []Bank
	for _, b := range Catalog {
		if ChecksumValid(accountNumber, b.Code) {
			candidates = append(candidates, b)
		}
	}
	return candidates
}

// CheckDigit computes the valid NUBAN check digit for an institution code and
// the first 9 digits of an account number. It returns -1 on malformed input.
func CheckDigit(serial9, institutionCode string) int {
	if len(serial9) != 9 || !allDigits(serial9) || !allDigits(institutionCode) || institutionCode == "" {
		return -1
	}
	serial := institutionCode + serial9
	sum := 0
	for i, c := range serial {
		sum += int(c-'0') * nubanWeights[i%len(nubanWeights)]
	}
	return (10 - sum%10) % 10
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
