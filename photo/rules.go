// Package photo gates the mandatory portrait upload behind shape, size and
// duplicate-fingerprint checks.
package photo

import "fmt"

// Rules declares the acceptance window for a half-body portrait.
type Rules struct {
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
	MinRatio  float64
	MaxRatio  float64
	// HashDistance is the maximum hamming distance in bits between two
	// fingerprints still treated as the same person.
	HashDistance int
}

// DefaultRules mirrors the production acceptance window.
func DefaultRules() Rules {
	return Rules{
		MinWidth:     600,
		MinHeight:    800,
		MaxWidth:     4000,
		MaxHeight:    4000,
		MinRatio:     0.6,
		MaxRatio:     0.9,
		HashDistance: 10,
	}
}

// RejectReason identifies why a candidate photo was declined.
type RejectReason string

const (
	RejectTooSmall    RejectReason = "too_small"
	RejectTooLarge    RejectReason = "too_large"
	RejectNotPortrait RejectReason = "not_portrait"
	RejectBadRatio    RejectReason = "bad_ratio"
	RejectMismatch    RejectReason = "fingerprint_mismatch"
	RejectUndecodable RejectReason = "undecodable"
)

// RejectionError carries the reason and a user-facing message.
type RejectionError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("photo rejected (%s): %s", e.Reason, e.Message)
}

func reject(reason RejectReason, format string, args ...any) *RejectionError {
	return &RejectionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
