package phone

import "strings"

// CountryPrefix is the only dialing prefix accepted for patient logins.
const CountryPrefix = "+91"

const nationalDigits = 10

// ValidateNumber reports whether s is a well-formed Indian mobile number:
// the literal +91 prefix followed by exactly ten digits. Partial matches
// and other country codes are rejected.
func ValidateNumber(s string) bool {
	if !strings.HasPrefix(s, CountryPrefix) {
		return false
	}
	rest := s[len(CountryPrefix):]
	if len(rest) != nationalDigits {
		return false
	}
	return allDigits(rest)
}

// ValidateCode reports whether s is exactly four ASCII digits.
func ValidateCode(s string) bool {
	return len(s) == 4 && allDigits(s)
}

// NationalNumber strips the country prefix; OTP rows are keyed on the
// ten-digit national number.
func NationalNumber(s string) string {
	return strings.TrimPrefix(s, CountryPrefix)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
