package constructioncarbon

import (
	"fmt"
	"log/slog"
)

// ValidationResult gathers the outcome of consistency checks. Errors mean the
// result must not be trusted; warnings mean it is usable but must be shown to
// a human.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid returns an empty, valid result.
func Valid() ValidationResult {
	return ValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}}
}

// Warn appends a formatted warning.
func (r *ValidationResult) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Fail appends a formatted error and marks the result invalid.
func (r *ValidationResult) Fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

// Merge returns the union of r and others. The merged result is valid only if
// every input is.
func (r ValidationResult) Merge(others ...ValidationResult) ValidationResult {
	merged := Valid()
	for _, result := range append([]ValidationResult{r}, others...) {
		merged.Errors = append(merged.Errors, result.Errors...)
		merged.Warnings = append(merged.Warnings, result.Warnings...)
		if !result.IsValid || len(result.Errors) > 0 {
			merged.IsValid = false
		}
	}
	return merged
}

// HasWarnings reports whether any warning was raised.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Log writes every warning and error for the audit trail.
func (r ValidationResult) Log(logger *slog.Logger, attrs ...any) {
	for _, warning := range r.Warnings {
		logger.Warn("consistency warning", append([]any{"warning", warning}, attrs...)...)
	}
	for _, err := range r.Errors {
		logger.Error("consistency error", append([]any{"err", err}, attrs...)...)
	}
}
