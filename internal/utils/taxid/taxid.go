// Package taxid validates RIF tax-identification numbers: a 1-letter type
// prefix, a numeric body of 7 to 9 digits, and a weighted-checksum digit.
package taxid

import "strings"

// checksumWeights are applied right-aligned over the zero-padded 9-digit body.
var checksumWeights = [9]int{4, 3, 2, 7, 6, 5, 4, 3, 2}

// validPrefixes enumerates the legal RIF type prefixes.
var validPrefixes = map[byte]struct{}{
	'V': {}, // natural citizen
	'E': {}, // resident foreigner
	'J': {}, // juridical person
	'P': {}, // passport holder
	'G': {}, // government entity
	'C': {}, // commune
}

// ValidPrefix reports whether b is a legal RIF type prefix.
func ValidPrefix(b byte) bool {
	_, ok := validPrefixes[b]
	return ok
}

// CheckDigit computes the check digit for a numeric body of up to 9 digits:
// zero-pad to 9, weighted sum mod 11; a remainder below 2 is the check digit
// verbatim, otherwise 11 minus the remainder. Returns -1 for non-numeric or
// oversized input.
func CheckDigit(digits string) int {
	if len(digits) == 0 || len(digits) > 9 {
		return -1
	}

	padded := strings.Repeat("0", 9-len(digits)) + digits

	sum := 0
	for i := 0; i < 9; i++ {
		d := padded[i]
		if d < '0' || d > '9' {
			return -1
		}
		sum += int(d-'0') * checksumWeights[i]
	}

	remainder := sum % 11
	if remainder < 2 {
		return remainder
	}
	return 11 - remainder
}

// Validate reports whether value is a well-formed RIF with a correct check
// digit. The expected shape is PREFIX-DIGITS-CHECKDIGIT, e.g. "J-12345678-1",
// with a body of 7 to 9 digits. Malformed input returns false; Validate
// never panics.
func Validate(value string) bool {
	value = strings.ToUpper(strings.TrimSpace(value))
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return false
	}

	prefix, body, check := parts[0], parts[1], parts[2]
	if len(prefix) != 1 || !ValidPrefix(prefix[0]) {
		return false
	}
	if len(body) < 7 || len(body) > 9 {
		return false
	}
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return false
		}
	}
	if len(check) != 1 || check[0] < '0' || check[0] > '9' {
		return false
	}

	return CheckDigit(body) == int(check[0]-'0')
}

// Format normalizes a RIF for storage: uppercase, no spaces.
func Format(value string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(value)), " ", "")
}
