// Package testhelpers provides reusable testing utilities for Noblinks.
//
// This package contains:
// - HTTP test helpers (creating test requests, asserting on responses)
// - A stub intent extractor for exercising the matcher without a provider
// - Data builders for alerts and capabilities
package testhelpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/noblinks/noblinks/internal/database"
	"github.com/noblinks/noblinks/internal/matcher"
)

// ========================================
// HTTP Test Helpers
// ========================================

// HTTPTestContext holds components for HTTP handler testing
type HTTPTestContext struct {
	T        *testing.T
	Recorder *httptest.ResponseRecorder
	Request  *http.Request
}

// NewHTTPTestContext creates a new HTTP test context
func NewHTTPTestContext(t *testing.T, method, path string, body io.Reader) *HTTPTestContext {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	return &HTTPTestContext{
		T:        t,
		Recorder: httptest.NewRecorder(),
		Request:  req,
	}
}

// WithHeader adds a header to the request
func (ctx *HTTPTestContext) WithHeader(key, value string) *HTTPTestContext {
	ctx.Request.Header.Set(key, value)
	return ctx
}

// WithJSONBody sets JSON body on the request
func (ctx *HTTPTestContext) WithJSONBody(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		ctx.T.Fatalf("failed to marshal JSON body: %v", err)
	}
	ctx.Request = httptest.NewRequest(ctx.Request.Method, ctx.Request.URL.String(), bytes.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	return ctx
}

// WithBearerToken adds Authorization Bearer header
func (ctx *HTTPTestContext) WithBearerToken(token string) *HTTPTestContext {
	return ctx.WithHeader("Authorization", "Bearer "+token)
}

// WithContext replaces the request context
func (ctx *HTTPTestContext) WithContext(c context.Context) *HTTPTestContext {
	ctx.Request = ctx.Request.WithContext(c)
	return ctx
}

// Execute runs the handler and returns the response
func (ctx *HTTPTestContext) Execute(handler http.Handler) *HTTPTestContext {
	handler.ServeHTTP(ctx.Recorder, ctx.Request)
	return ctx
}

// ExecuteFunc runs the handler func and returns the response
func (ctx *HTTPTestContext) ExecuteFunc(handler http.HandlerFunc) *HTTPTestContext {
	handler(ctx.Recorder, ctx.Request)
	return ctx
}

// AssertStatus checks the response status code
func (ctx *HTTPTestContext) AssertStatus(expected int) *HTTPTestContext {
	ctx.T.Helper()
	if ctx.Recorder.Code != expected {
		ctx.T.Errorf("expected status %d, got %d. Body: %s", expected, ctx.Recorder.Code, ctx.Recorder.Body.String())
	}
	return ctx
}

// AssertBodyContains checks if response body contains substring
func (ctx *HTTPTestContext) AssertBodyContains(substr string) *HTTPTestContext {
	ctx.T.Helper()
	body := ctx.Recorder.Body.String()
	if !strings.Contains(body, substr) {
		ctx.T.Errorf("expected body to contain %q, got: %s", substr, body)
	}
	return ctx
}

// AssertHeader checks response header value
func (ctx *HTTPTestContext) AssertHeader(key, expected string) *HTTPTestContext {
	ctx.T.Helper()
	got := ctx.Recorder.Header().Get(key)
	if got != expected {
		ctx.T.Errorf("expected header %s=%q, got %q", key, expected, got)
	}
	return ctx
}

// DecodeJSON decodes response body as JSON
func (ctx *HTTPTestContext) DecodeJSON(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	if err := json.NewDecoder(ctx.Recorder.Body).Decode(v); err != nil {
		ctx.T.Fatalf("failed to decode JSON response: %v", err)
	}
	return ctx
}

// ========================================
// Stub Intent Extractor
// ========================================

// StubExtractor implements matcher.IntentExtractor with a canned intent
// or error, and records what it was called with.
type StubExtractor struct {
	Intent      *matcher.Intent
	Err         error
	Called      bool
	LastPrompt  string
	SeenCatalog []database.MonitoringCapability
}

// NewStubExtractor creates a stub returning the given intent
func NewStubExtractor(intent *matcher.Intent) *StubExtractor {
	return &StubExtractor{Intent: intent}
}

// WithError configures the stub to fail
func (s *StubExtractor) WithError(err error) *StubExtractor {
	s.Err = err
	return s
}

// ExtractIntent returns the canned intent or error
func (s *StubExtractor) ExtractIntent(_ context.Context, prompt string, capabilities []database.MonitoringCapability) (*matcher.Intent, error) {
	s.Called = true
	s.LastPrompt = prompt
	s.SeenCatalog = capabilities
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Intent, nil
}

// Float64Ptr returns a pointer to v, for optional threshold fields
func Float64Ptr(v float64) *float64 {
	return &v
}
