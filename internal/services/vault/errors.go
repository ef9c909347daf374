package vault

import "errors"

var (
	// ErrMissingSecret means the encryption secret was not configured. It is
	// fatal to process startup, not a per-request error.
	ErrMissingSecret = errors.New("card encryption secret is not configured")

	// ErrEmptyCardNumber is returned when encrypting an empty identifier.
	ErrEmptyCardNumber = errors.New("card number cannot be empty")

	// ErrDecryptFailed covers malformed, truncated or tampered ciphertexts.
	ErrDecryptFailed = errors.New("failed to decrypt card number")

	// ErrGenerateExhausted means no unique card number could be produced
	// within the attempt budget.
	ErrGenerateExhausted = errors.New("failed to generate a unique card number")
)
