// Package docxerr defines the error kinds reported by the ingestion and
// query engine, so callers across transports can map one error shape onto
// HTTP status codes or RPC error codes without inspecting wrapped causes.
package docxerr

import "fmt"

// Kind classifies an error raised anywhere in the control plane, store, or
// registry.
type Kind int

const (
	// InvalidInput covers validation failures: missing required fields,
	// malformed identifiers, empty filter sets, bad patterns.
	InvalidInput Kind = iota
	// Parse covers format-specific parser failures (C# XML, rustdoc JSON).
	Parse
	// NotFound covers unknown tenants, symbols, projects, ingests.
	NotFound
	// CapacityReached covers the tenant registry's max-entries bound.
	CapacityReached
	// BuildFailed covers a tenant handle construction failure. Never cached.
	BuildFailed
	// StorageFailure covers wrapped backend/store errors.
	StorageFailure
	// Timeout covers ingest pipeline deadline expiry.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case Parse:
		return "Parse"
	case NotFound:
		return "NotFound"
	case CapacityReached:
		return "CapacityReached"
	case BuildFailed:
		return "BuildFailed"
	case StorageFailure:
		return "StorageFailure"
	case Timeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Error is the single error type produced by this module. Kind is always
// set; Cause is the wrapped underlying error, if any.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, docxerr.New(docxerr.InvalidInput, "")) style
// checks: any *Error target matches on Kind alone, ignoring its message
// and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Invalid(format string, args ...any) *Error {
	return New(InvalidInput, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func Storagef(cause error, format string, args ...any) *Error {
	return Wrap(StorageFailure, fmt.Sprintf(format, args...), cause)
}

// KindOf extracts the Kind from err, defaulting to StorageFailure for
// errors that did not originate from this package (wrapped backend errors
// that were never tagged).
func KindOf(err error) Kind {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return StorageFailure
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
