package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kind codes reported to clients. Each provider failure maps to
// exactly one of these so callers can tell retryable failures (rate
// limit, network) from terminal ones (configuration, auth).
const (
	ErrKindConfiguration = "configuration_error"
	ErrKindAuth          = "auth_error"
	ErrKindRateLimit     = "rate_limit_error"
	ErrKindNetwork       = "network_error"
	ErrKindUnknown       = "provider_error"
)

// ConfigurationError means no AI provider credentials are available. This
// is a server-side problem the user cannot correct.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("AI provider not configured: %s", e.Reason)
}

// AuthError means the provider rejected our credentials.
type AuthError struct {
	Provider   string
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s rejected credentials (HTTP %d)", e.Provider, e.StatusCode)
}

// RateLimitError means the provider throttled the request. Safe to retry
// after a pause.
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded", e.Provider)
}

// NetworkError is a transport failure reaching the provider (connection
// refused, timeout, cancelled context). Safe to retry.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to reach %s: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UnknownProviderError covers any other provider failure. Detail carries
// diagnostic information and is only exposed to clients outside
// production.
type UnknownProviderError struct {
	Provider   string
	StatusCode int
	Detail     string
}

func (e *UnknownProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (HTTP %d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed", e.Provider)
}

// Kind returns the error kind code for a provider error, or ErrKindUnknown
// for anything unrecognized.
func Kind(err error) string {
	var (
		cfgErr  *ConfigurationError
		authErr *AuthError
		rateErr *RateLimitError
		netErr  *NetworkError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ErrKindConfiguration
	case errors.As(err, &authErr):
		return ErrKindAuth
	case errors.As(err, &rateErr):
		return ErrKindRateLimit
	case errors.As(err, &netErr):
		return ErrKindNetwork
	default:
		return ErrKindUnknown
	}
}

// Retryable reports whether retrying the same request may succeed.
func Retryable(err error) bool {
	switch Kind(err) {
	case ErrKindRateLimit, ErrKindNetwork:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the HTTP status code a handler should respond with
// for a provider error.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrKindConfiguration:
		return http.StatusInternalServerError
	case ErrKindAuth:
		return http.StatusBadGateway
	case ErrKindRateLimit:
		return http.StatusTooManyRequests
	case ErrKindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// UserMessage returns the client-facing message for a provider error.
// Diagnostic detail from UnknownProviderError is only included when
// production is false.
func UserMessage(err error, production bool) string {
	switch Kind(err) {
	case ErrKindConfiguration:
		return "AI provider is not configured"
	case ErrKindAuth:
		return "AI provider rejected the configured credentials"
	case ErrKindRateLimit:
		return "AI provider rate limit exceeded, please retry shortly"
	case ErrKindNetwork:
		return "Could not reach the AI provider, please retry"
	default:
		var unknownErr *UnknownProviderError
		if !production && errors.As(err, &unknownErr) && unknownErr.Detail != "" {
			return fmt.Sprintf("AI processing failed: %s", unknownErr.Detail)
		}
		return "AI processing failed. Please try again."
	}
}
