package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid number", "+919876543210", true},
		{"valid with leading zero digit", "+910123456789", true},
		{"missing plus", "919876543210", false},
		{"wrong country code", "+449876543210", false},
		{"too few digits", "+91987654321", false},
		{"too many digits", "+9198765432101", false},
		{"letters in number", "+91987654321a", false},
		{"prefix only", "+91", false},
		{"empty", "", false},
		{"spaces", "+91 876543210", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateNumber(tt.input))
		})
	}
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid code", "4821", true},
		{"leading zeros", "0042", true},
		{"too short", "482", false},
		{"too long", "48210", false},
		{"letters", "48a1", false},
		{"empty", "", false},
		{"negative", "-482", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCode(tt.input))
		})
	}
}

func TestNationalNumber(t *testing.T) {
	assert.Equal(t, "9876543210", NationalNumber("+919876543210"))
	assert.Equal(t, "9876543210", NationalNumber("9876543210"))
}
