// Package errors provides error handling for irw-go.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel-based classification of warehouse retrieval failures
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	Mark         = crdb.Mark
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll

	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Sentinel errors used across irw-go.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates a table is absent from every searched source
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates a request the warehouse rejects outright;
	// remaining sources are not consulted for this kind of failure
	ErrInvalidRequest = New("invalid request")

	// ErrRetrieval indicates a retrieval failure that is neither a
	// not-found nor an invalid request (transient or unclassifiable)
	ErrRetrieval = New("retrieval failed")

	// ErrSchema indicates required columns are missing from a table
	ErrSchema = New("schema mismatch")

	// ErrUnsupportedFormat indicates the table shape is out of scope for
	// the requested operation (e.g. timestamped response data)
	ErrUnsupportedFormat = New("unsupported format")

	// ErrConfiguration indicates a caller-correctable configuration value,
	// such as an unknown aggregation method or filter name
	ErrConfiguration = New("invalid configuration")

	// ErrDegradedMetadata indicates a metadata source failed to load and
	// the listing was assembled from partial metadata
	ErrDegradedMetadata = New("metadata degraded")
)

// Kind classifies a retrieval failure for fallback control flow.
type Kind int

const (
	// KindUnknown is a failure with no recognizable classification.
	KindUnknown Kind = iota
	// KindNotFound means the table does not exist in the source.
	KindNotFound
	// KindInvalidRequest means the source rejected the request itself.
	KindInvalidRequest
	// KindTransient means the failure looks retryable (timeouts, connection
	// drops, 5xx-style upstream errors).
	KindTransient
)

// Classify maps a source error onto a Kind. Sentinel matches win; otherwise
// the message is scanned for transient-looking markers the way warehouse
// backends report them.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if Is(err, ErrInvalidRequest) {
		return KindInvalidRequest
	}
	if Is(err, ErrNotFound) {
		return KindNotFound
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "temporar", "connection", "server error", "502", "503"} {
		if strings.Contains(msg, marker) {
			return KindTransient
		}
	}
	return KindUnknown
}

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequest checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequest(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsRetrieval checks if an error is or wraps ErrRetrieval
func IsRetrieval(err error) bool {
	return err != nil && Is(err, ErrRetrieval)
}

// IsConfiguration checks if an error is or wraps ErrConfiguration
func IsConfiguration(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsDegradedMetadata checks if an error is or wraps ErrDegradedMetadata
func IsDegradedMetadata(err error) bool {
	return err != nil && Is(err, ErrDegradedMetadata)
}

// NewNotFound creates a not-found error with a formatted message
func NewNotFound(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequest creates an invalid-request error with a formatted message
func NewInvalidRequest(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// NewConfiguration creates a configuration error with a formatted message
func NewConfiguration(format string, args ...interface{}) error {
	return Wrap(ErrConfiguration, Newf(format, args...).Error())
}
