// Package vault generates, encrypts and masks card numbers. Plaintext
// numbers exist only in memory; the store only ever sees ciphertexts.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	// bankBIN is the fixed issuer prefix of every generated card number.
	bankBIN = "400000"

	cardNumberLength      = 16
	maxGenerationAttempts = 10
	gcmNonceSize          = 12
)

// EncryptedNumberLister is the slice of the store the vault needs for
// uniqueness checks.
type EncryptedNumberLister interface {
	ListAllEncryptedNumbers() ([]string, error)
}

// Service protects card numbers and mints new ones.
type Service interface {
	// Generate produces a 16-digit card number with a valid Luhn check digit
	// that does not collide with any number already stored.
	Generate(lister EncryptedNumberLister) (string, error)

	// Encrypt seals a plaintext card number with AES-256-GCM. Output is
	// base64(nonce || ciphertext) and differs between calls.
	Encrypt(cardNumber string) (string, error)

	// Decrypt reverses Encrypt. Malformed or tampered input fails with
	// ErrDecryptFailed.
	Decrypt(encrypted string) (string, error)

	// Mask renders a display-safe form showing only the last four digits.
	Mask(cardNumber string) string
}

type service struct {
	gcm cipher.AEAD
}

// NewService derives a 256-bit key from the configured secret and prepares
// the cipher. An empty secret is a configuration error and the caller is
// expected to abort startup.
func NewService(secret string) (Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &service{gcm: gcm}, nil
}

func (s *service) Generate(lister EncryptedNumberLister) (string, error) {
	existing, err := lister.ListAllEncryptedNumbers()
	if err != nil {
		return "", fmt.Errorf("failed to load existing card numbers: %w", err)
	}

	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		candidate, err := s.generateWithLuhn()
		if err != nil {
			return "", err
		}
		duplicate, err := s.isDuplicate(candidate, existing)
		if err != nil {
			return "", err
		}
		if !duplicate {
			return candidate, nil
		}
		logrus.Warnf("generated duplicate card number, attempt %d/%d", attempt+1, maxGenerationAttempts)
	}

	return "", ErrGenerateExhausted
}

func (s *service) generateWithLuhn() (string, error) {
	digits := make([]byte, cardNumberLength-len(bankBIN)-1)
	if _, err := rand.Read(digits); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	number := make([]byte, 0, cardNumberLength)
	number = append(number, bankBIN...)
	for _, b := range digits {
		number = append(number, b%10+'0')
	}
	number = append(number, byte(luhnCheckDigit(string(number)))+'0')

	return string(number), nil
}

// isDuplicate decrypts every stored ciphertext and compares in plaintext.
// O(n) per attempt; a keyed blind index would make this a point lookup but
// requires a schema change.
func (s *service) isDuplicate(candidate string, existing []string) (bool, error) {
	for _, encrypted := range existing {
		stored, err := s.Decrypt(encrypted)
		if err != nil {
			logrus.Errorf("failed to decrypt stored card number during uniqueness check: %v", err)
			continue
		}
		if stored == candidate {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Encrypt(cardNumber string) (string, error) {
	if cardNumber == "" {
		return "", ErrEmptyCardNumber
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.gcm.Seal(nonce, nonce, []byte(cardNumber), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *service) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", ErrDecryptFailed
	}

	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrDecryptFailed)
	}
	if len(data) < gcmNonceSize+s.gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}

	nonce, ciphertext := data[:gcmNonceSize], data[gcmNonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: integrity check failed", ErrDecryptFailed)
	}

	return string(plaintext), nil
}

func (s *service) Mask(cardNumber string) string {
	if len(cardNumber) < 4 {
		return "****"
	}
	return "**** **** **** " + cardNumber[len(cardNumber)-4:]
}
