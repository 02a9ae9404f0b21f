// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// Every failure the pipeline can surface is one of these typed errors.
// Callers match with errors.As and map to an HTTP status; nothing here is
// retried automatically.

// ValidationError means the caller supplied malformed input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// Helper constructor
func NewValidation(reason string) error {
	return &ValidationError{Reason: reason}
}

// AnalysisError means the prospect website could not be fetched or the
// analysis model returned something unusable.
type AnalysisError struct {
	URL    string
	Reason string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %s", e.URL, e.Reason)
}

func NewAnalysis(url, reason string) error {
	return &AnalysisError{URL: url, Reason: reason}
}

// CompositionError means the email generation step produced empty or
// unparseable content.
type CompositionError struct {
	Reason string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("email composition failed: %s", e.Reason)
}

func NewComposition(reason string) error {
	return &CompositionError{Reason: reason}
}

// DuplicateError is a policy rejection: this company/contact pair already
// received an outreach email.
type DuplicateError struct {
	CompanyName string
	Email       string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("prospecting email already sent to %s (%s)", e.CompanyName, e.Email)
}

func NewDuplicate(companyName, email string) error {
	return &DuplicateError{CompanyName: companyName, Email: email}
}

// RateLimitError means the hourly send ceiling is reached. Transient: the
// caller can retry once the window slides.
type RateLimitError struct {
	Limit int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("hourly email limit (%d) reached, please wait before sending more", e.Limit)
}

func NewRateLimit(limit int) error {
	return &RateLimitError{Limit: limit}
}

// DeliveryError wraps an SMTP-layer failure. No activity is recorded and no
// rate budget is consumed when one of these occurs.
type DeliveryError struct {
	Reason string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("delivery failed: %s", e.Reason)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func NewDelivery(reason string, err error) error {
	return &DeliveryError{Reason: reason, Err: err}
}

// IsDuplicate reports whether err is a DuplicateError.
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}

// IsRateLimit reports whether err is a RateLimitError.
func IsRateLimit(err error) bool {
	var re *RateLimitError
	return errors.As(err, &re)
}
