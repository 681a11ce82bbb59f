package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"configuration error", &ConfigurationError{Reason: "no key"}, ErrKindConfiguration},
		{"auth error", &AuthError{Provider: "openai", StatusCode: 401}, ErrKindAuth},
		{"rate limit error", &RateLimitError{Provider: "openai"}, ErrKindRateLimit},
		{"network error", &NetworkError{Provider: "openai", Err: errors.New("timeout")}, ErrKindNetwork},
		{"unknown provider error", &UnknownProviderError{Provider: "openai", StatusCode: 500}, ErrKindUnknown},
		{"plain error", errors.New("boom"), ErrKindUnknown},
		{"wrapped auth error", fmt.Errorf("context: %w", &AuthError{Provider: "openai", StatusCode: 403}), ErrKindAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.expected {
				t.Errorf("expected kind %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limit is retryable", &RateLimitError{Provider: "openai"}, true},
		{"network failure is retryable", &NetworkError{Provider: "openai", Err: errors.New("refused")}, true},
		{"configuration is terminal", &ConfigurationError{Reason: "no key"}, false},
		{"auth is terminal", &AuthError{Provider: "openai", StatusCode: 401}, false},
		{"unknown is terminal", &UnknownProviderError{Provider: "openai"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, got)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{&ConfigurationError{Reason: "no key"}, http.StatusInternalServerError},
		{&AuthError{Provider: "openai", StatusCode: 401}, http.StatusBadGateway},
		{&RateLimitError{Provider: "openai"}, http.StatusTooManyRequests},
		{&NetworkError{Provider: "openai", Err: errors.New("refused")}, http.StatusServiceUnavailable},
		{&UnknownProviderError{Provider: "openai", StatusCode: 500}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.expected {
			t.Errorf("HTTPStatus(%T): expected %d, got %d", tt.err, tt.expected, got)
		}
	}
}

func TestUserMessageHidesDetailInProduction(t *testing.T) {
	err := &UnknownProviderError{Provider: "openai", StatusCode: 500, Detail: "internal stack trace"}

	dev := UserMessage(err, false)
	if !strings.Contains(dev, "internal stack trace") {
		t.Errorf("expected detail outside production, got %q", dev)
	}

	prod := UserMessage(err, true)
	if strings.Contains(prod, "internal stack trace") {
		t.Errorf("expected detail suppressed in production, got %q", prod)
	}
	if prod == "" {
		t.Error("expected a generic message in production")
	}
}

func TestUserMessageNeverEmpty(t *testing.T) {
	errs := []error{
		&ConfigurationError{Reason: "no key"},
		&AuthError{Provider: "openai", StatusCode: 401},
		&RateLimitError{Provider: "openai"},
		&NetworkError{Provider: "openai", Err: errors.New("refused")},
		&UnknownProviderError{Provider: "openai"},
		errors.New("boom"),
	}
	for _, err := range errs {
		if UserMessage(err, true) == "" {
			t.Errorf("empty user message for %T", err)
		}
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &NetworkError{Provider: "openai", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected NetworkError to unwrap to its cause")
	}
}
