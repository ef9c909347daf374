package vault

// luhnCheckDigit computes the check digit for a partial card number so that
// the full number passes the Luhn check. Digits are doubled every second
// position from the right, with 9 subtracted from any product over 9.
func luhnCheckDigit(partial string) int {
	sum := 0
	double := true

	for i := len(partial) - 1; i >= 0; i-- {
		digit := int(partial[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return (10 - sum%10) % 10
}

// LuhnValid reports whether a full card number passes the Luhn check.
func LuhnValid(cardNumber string) bool {
	if cardNumber == "" {
		return false
	}
	sum := 0
	double := false

	for i := len(cardNumber) - 1; i >= 0; i-- {
		c := cardNumber[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}
