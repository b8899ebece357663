package errors

import (
	"math"
	"strings"
	"unicode"
)

// Score bounds shared by the calculator and the dashboard forms.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// ValidateScore checks that a grade lies in [MinScore, MaxScore].
// The field name is included in the message so form errors can be shown inline.
func ValidateScore(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a number", field)
	}
	if v < MinScore || v > MaxScore {
		return New(ErrCodeInvalidInput, "%s must be between %.0f and %.0f, got %.2f", field, MinScore, MaxScore, v)
	}
	return nil
}

// ValidateLocation validates a data file location.
//
// Accepted forms are plain filesystem paths and URLs with a file, mem,
// http or https scheme. Control characters and empty values are rejected.
func ValidateLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return New(ErrCodeInvalidConfig, "data location cannot be empty")
	}
	for _, r := range location {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "data location contains invalid control characters")
		}
	}
	scheme, _, hasScheme := strings.Cut(location, "://")
	if !hasScheme {
		return nil
	}
	switch strings.ToLower(scheme) {
	case "file", "mem", "http", "https":
		return nil
	default:
		return New(ErrCodeInvalidConfig, "unsupported data location scheme: %q", scheme)
	}
}
