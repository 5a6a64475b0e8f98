// Package failure defines the error kinds surfaced by the lokitd request
// flows and their mapping to HTTP status codes.
//
// A flow returns either its payload or a *Error. The HTTP boundary turns
// the *Error into a JSON body whose "code" always equals the transport
// status, and every kind maps to a non-2xx status.
package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// UpstreamUnknownFailure is any collaborator error not classified below.
	// It is the zero value so unclassified errors default to it.
	UpstreamUnknownFailure Kind = iota
	// InvalidInput means a request field is missing or malformed.
	InvalidInput
	// UnsupportedProvider means the AI provider identifier is unknown.
	UnsupportedProvider
	// UpstreamAuthFailure means the provider rejected the credential.
	UpstreamAuthFailure
	// UpstreamRateLimited means the provider refused the call with 429.
	UpstreamRateLimited
	// UpstreamTimeout means the provider did not answer within the request timeout.
	UpstreamTimeout
	// UpstreamParseFailure means the generated text was not recoverable JSON.
	UpstreamParseFailure
	// ValidationFailure means the parsed JSON did not match the expected shape.
	ValidationFailure
)

var kindNames = map[Kind]string{
	UpstreamUnknownFailure: "upstream_unknown_failure",
	InvalidInput:           "invalid_input",
	UnsupportedProvider:    "unsupported_provider",
	UpstreamAuthFailure:    "upstream_auth_failure",
	UpstreamRateLimited:    "upstream_rate_limited",
	UpstreamTimeout:        "upstream_timeout",
	UpstreamParseFailure:   "upstream_parse_failure",
	ValidationFailure:      "validation_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case InvalidInput, UnsupportedProvider:
		return http.StatusBadRequest
	case UpstreamAuthFailure:
		return http.StatusUnauthorized
	case UpstreamRateLimited:
		return http.StatusTooManyRequests
	case UpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Diagnostics carries optional payloads that help a caller debug a failure.
// None of the fields is required for correct caller behavior.
type Diagnostics struct {
	// RawResponse is the unmodified text generated by the provider.
	RawResponse string
	// CleanedResponse is the text after sanitation.
	CleanedResponse string
	// Original is the source array of a translation request.
	Original []string
	// Translated is the decoded provider output of a validation failure,
	// whatever its JSON type.
	Translated any
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Message is the short, stable, machine-checkable error string.
	Message string
	// DetailFormat and DetailArgs form a human-readable explanation. They
	// are kept apart so the HTTP boundary can localize the format.
	DetailFormat string
	DetailArgs   []any
	Diagnostics  Diagnostics

	cause error
}

// New returns an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error of the given kind that unwraps to cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithDetails sets the detail format and arguments and returns e.
func (e *Error) WithDetails(format string, args ...any) *Error {
	e.DetailFormat = format
	e.DetailArgs = args
	return e
}

// WithDiagnostics sets the diagnostic payload and returns e.
func (e *Error) WithDiagnostics(d Diagnostics) *Error {
	e.Diagnostics = d
	return e
}

// Details renders the detail message without localization.
func (e *Error) Details() string {
	if e.DetailFormat == "" {
		return ""
	}
	return fmt.Sprintf(e.DetailFormat, e.DetailArgs...)
}

func (e *Error) Error() string {
	msg := e.Message
	if d := e.Details(); d != "" {
		msg += ": " + d
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the kind of err, or UpstreamUnknownFailure when err carries
// no *Error.
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return UpstreamUnknownFailure
}
