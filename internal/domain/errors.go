package domain

import "fmt"

// Error types for consistent error handling across the assistant.

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates a missing or invalid credential/user.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConfiguration indicates missing provider credentials. Fatal for the
// request; never retried automatically.
type ErrConfiguration struct {
	Setting string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Setting)
}

// UpstreamKind discriminates language-model provider failures so each can
// surface its own user-facing message.
type UpstreamKind string

const (
	UpstreamRateLimited UpstreamKind = "rate_limited"
	UpstreamQuota       UpstreamKind = "quota_exceeded"
	UpstreamBadKey      UpstreamKind = "invalid_credentials"
	UpstreamUnavailable UpstreamKind = "unavailable"
)

// ErrUpstream indicates a language-model provider failure. Not retried by
// the core; the caller may resubmit manually.
type ErrUpstream struct {
	Kind UpstreamKind
	Err  error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream provider failure [%s]: %v", e.Kind, e.Err)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

// ErrExternalService indicates a failure in a collaborating data store.
// Callers degrade to partial data rather than aborting the request.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrBusy indicates a conversation turn is already awaiting a response.
type ErrBusy struct{}

func (e *ErrBusy) Error() string {
	return "a response is already in flight for this conversation"
}
