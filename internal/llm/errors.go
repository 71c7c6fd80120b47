package llm

import "fmt"

// FailureKind classifies generation failures so callers can branch on them.
type FailureKind string

// Failure kinds for generation calls.
const (
	// FailureAuth means the provider rejected the supplied credentials.
	FailureAuth FailureKind = "auth"
	// FailureRateLimit means the provider throttled the request.
	FailureRateLimit FailureKind = "rate_limit"
	// FailureMalformed means the provider answered but the response carried
	// no usable text.
	FailureMalformed FailureKind = "malformed_response"
	// FailureTransport covers network and other provider-side errors.
	FailureTransport FailureKind = "transport"
)

// APIError is a typed generation failure from a provider.
type APIError struct {
	Provider Provider
	Kind     FailureKind
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s error", e.Provider, e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError wraps a provider failure with its classification.
func newAPIError(provider Provider, kind FailureKind, err error) *APIError {
	return &APIError{Provider: provider, Kind: kind, Err: err}
}
