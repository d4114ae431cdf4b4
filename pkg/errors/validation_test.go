package errors

import (
	"math"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "router-1", false},
		{"uuid", "3f2b8c1e-9d7a-4e55-8a1b-0c3d2e1f4a5b", false},
		{"dots and colons", "port:10.0.0.1", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("node", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateIdentifier(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateDimension(t *testing.T) {
	tests := []struct {
		value   float64
		wantErr bool
	}{
		{600, false},
		{0.5, false},
		{0, true},
		{-10, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidateDimension("width", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDimension(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidDimension) {
			t.Errorf("ValidateDimension(%v) returned wrong error code: %v", tt.value, err)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidDataset,
		ErrCodeInvalidFormat,
		ErrCodeInvalidEngine,
		ErrCodeInvalidDimension,
		ErrCodeInvalidConfig,
		ErrCodeNotFound,
		ErrCodeChartNotFound,
		ErrCodeNodeNotFound,
		ErrCodeUnknownEvent,
		ErrCodeUnknownData,
		ErrCodeStorage,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
