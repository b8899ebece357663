package errors

import (
	"math"
	"testing"
)

func TestValidateScore(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"ten", 10, false},
		{"middle", 7.25, false},
		{"negative", -0.01, true},
		{"above max", 10.5, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScore("bachillerato", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScore(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateScore(%v) code = %v, want %v", tt.value, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		wantErr  bool
	}{
		{"relative path", "ponderaciones_andalucia.csv", false},
		{"absolute path", "/srv/data/ponderaciones.csv", false},
		{"file url", "file:///srv/data/ponderaciones.csv", false},
		{"https url", "https://example.org/ponderaciones.csv", false},
		{"mem url", "mem://localhost/data.csv", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"ftp", "ftp://example.org/data.csv", true},
		{"control char", "data\x00.csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocation(tt.location)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocation(%q) error = %v, wantErr %v", tt.location, err, tt.wantErr)
			}
		})
	}
}
