package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Service name must be alphanumeric with dots/hyphens/underscores, 2-100 chars
	serviceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{1,99}$`)

	// Metric names are identifiers like responseTime or http.latency_p99
	metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]{0,63}$`)
)

// InvalidInputError reports a malformed record handed over by a collaborator.
// It always matches ErrInvalidInput with errors.Is.
type InvalidInputError struct {
	Field  string
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid input: %s[%d]: %s", e.Field, e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid builds an InvalidInputError for a field that is not part of a list.
func Invalid(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Index: -1, Reason: reason}
}

// InvalidAt builds an InvalidInputError for element index of a list field.
func InvalidAt(field string, index int, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Index: index, Reason: reason}
}

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateServiceName checks if a service name is valid
func ValidateServiceName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return Invalid("name", "service name cannot be empty")
	}
	if len(name) > 100 {
		return Invalid("name", "service name must not exceed 100 characters")
	}
	if !serviceNameRegex.MatchString(name) {
		return Invalid("name", "service name must start with alphanumeric and contain only letters, numbers, dots, hyphens, and underscores")
	}
	return nil
}

// ValidateMetricName checks if a metric name is valid
func ValidateMetricName(name string) error {
	if name == "" {
		return Invalid("metric_name", "metric name cannot be empty")
	}
	if !metricNameRegex.MatchString(name) {
		return Invalid("metric_name", "metric name must be an identifier of at most 64 characters")
	}
	return nil
}

// ValidateID checks that a numeric identifier is positive
func ValidateID(field string, id int64) error {
	if id <= 0 {
		return Invalid(field, "must be a positive integer")
	}
	return nil
}

// ValidateMaxLength rejects values longer than max characters. Index -1
// reports a plain field.
func ValidateMaxLength(field string, index int, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return InvalidAt(field, index, fmt.Sprintf("must not exceed %d characters", max))
	}
	return nil
}

// ValidateFrameSymbol checks a class or method name taken from a stack frame
func ValidateFrameSymbol(field string, index int, symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return InvalidAt(field, index, "must not be empty")
	}
	if len(symbol) > 1024 {
		return InvalidAt(field, index, "must not exceed 1024 characters")
	}
	return nil
}
