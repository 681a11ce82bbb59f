// Package ai talks to an OpenAI-compatible chat-completion provider and
// classifies its failures. It is the only package that knows which
// provider is configured; everything above it sees a completion call and
// the typed errors from errors.go.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
)

// Options configures the provider client. OpenAI takes priority over
// OpenRouter when both keys are present.
type Options struct {
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenRouterAPIKey string
	OpenRouterModel  string
}

// Client calls a chat-completion provider over HTTP.
type Client struct {
	opts       Options
	httpClient *http.Client

	// endpointOverride redirects every provider to one URL, used by tests
	endpointOverride string
}

// NewClient creates a new provider client
func NewClient(opts Options) *Client {
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// provider is the resolved endpoint/credential pair for one request
type provider struct {
	name     string
	endpoint string
	apiKey   string
	model    string
}

// activeProvider resolves which provider to use. OpenAI first, then
// OpenRouter; no key at all is a ConfigurationError.
func (c *Client) activeProvider() (*provider, error) {
	var p *provider
	switch {
	case c.opts.OpenAIAPIKey != "":
		p = &provider{
			name:     "openai",
			endpoint: openAIEndpoint,
			apiKey:   c.opts.OpenAIAPIKey,
			model:    c.opts.OpenAIModel,
		}
	case c.opts.OpenRouterAPIKey != "":
		p = &provider{
			name:     "openrouter",
			endpoint: openRouterEndpoint,
			apiKey:   c.opts.OpenRouterAPIKey,
			model:    c.opts.OpenRouterModel,
		}
	default:
		return nil, &ConfigurationError{Reason: "set OPENAI_API_KEY or OPENROUTER_API_KEY"}
	}
	if c.endpointOverride != "" {
		p.endpoint = c.endpointOverride
	}
	return p, nil
}

// Configured returns true if at least one provider credential is set
func (c *Client) Configured() bool {
	_, err := c.activeProvider()
	return err == nil
}

// chat completion request/response structures (OpenAI wire format, also
// spoken by OpenRouter)
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CompleteJSON sends a system instruction plus user prompt and asks the
// provider for output conforming to the given JSON schema. It returns the
// raw content string of the first choice. Cancellation rides the request
// context; the client only adds a default transport timeout.
func (c *Client) CompleteJSON(ctx context.Context, system, prompt, schemaName string, schema json.RawMessage) (string, error) {
	p, err := c.activeProvider()
	if err != nil {
		return "", err
	}

	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   500,
		Temperature: 0.1, // low temperature for consistent extraction
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   schemaName,
				Strict: true,
				Schema: schema,
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Provider: p.name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Provider: p.name, Err: err}
	}

	if kindErr := classifyStatus(p.name, resp.StatusCode, body); kindErr != nil {
		return "", kindErr
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &UnknownProviderError{Provider: p.name, Detail: "unparseable provider response"}
	}

	if chatResp.Error != nil {
		return "", &UnknownProviderError{Provider: p.name, Detail: chatResp.Error.Message}
	}

	if len(chatResp.Choices) == 0 {
		return "", &UnknownProviderError{Provider: p.name, Detail: "provider returned no choices"}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// classifyStatus maps a non-200 provider status to a typed error
func classifyStatus(providerName string, status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Provider: providerName, StatusCode: status, Detail: truncateBody(body)}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Provider: providerName}
	default:
		return &UnknownProviderError{Provider: providerName, StatusCode: status, Detail: truncateBody(body)}
	}
}

// truncateBody keeps error payloads short enough for logs
func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		return s[:297] + "..."
	}
	return s
}
