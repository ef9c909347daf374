package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuhnCheckDigit(t *testing.T) {
	tests := []struct {
		name    string
		partial string
		want    int
	}{
		{name: "visa test number", partial: "424242424242424", want: 2},
		{name: "mastercard test number", partial: "555555555555444", want: 4},
		{name: "all zeros", partial: "000000000000000", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, luhnCheckDigit(tt.partial))
		})
	}
}

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{name: "valid visa", number: "4242424242424242", want: true},
		{name: "valid mastercard", number: "5555555555554444", want: true},
		{name: "single digit off", number: "4242424242424241", want: false},
		{name: "transposed digits", number: "4242424242424224", want: false},
		{name: "empty", number: "", want: false},
		{name: "non-digit characters", number: "4242-4242-4242-4242", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LuhnValid(tt.number))
		})
	}
}
