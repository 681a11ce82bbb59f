// Package matcher turns a free-text alert request into a validated,
// parameterized alert configuration selected from the capability catalog.
// The generative extractor is untrusted: everything it returns is
// re-validated against the catalog before it can reach storage.
package matcher

import (
	"context"

	"github.com/noblinks/noblinks/internal/database"
)

// Non-match error types
const (
	ErrTypeNoMatch           = "no_match"
	ErrTypeIncomplete        = "incomplete"
	ErrTypeInvalidCapability = "invalid_capability"
)

// Intent is the raw structured output of the intent extractor. It is an
// untrusted value: the capability key may be hallucinated and any field
// may be missing regardless of what the model was instructed to do.
type Intent struct {
	Matched       bool          `json:"matched"`
	CapabilityKey string        `json:"capabilityKey"`
	Params        *IntentParams `json:"params"`
	Severity      string        `json:"severity"`
	AlertName     string        `json:"alertName"`
	Description   string        `json:"description"`
	NoMatchReason string        `json:"noMatchReason"`
}

// IntentParams are the parameters the extractor pulled out of the prompt.
// Threshold is a pointer so an omitted value is distinguishable from 0.
type IntentParams struct {
	Machine   string   `json:"machine"`
	Threshold *float64 `json:"threshold"`
	Window    string   `json:"window"`
}

// IntentExtractor produces a structured Intent for a prompt against a
// capability catalog. The production implementation calls a generative
// model; tests inject a deterministic stub.
type IntentExtractor interface {
	ExtractIntent(ctx context.Context, prompt string, capabilities []database.MonitoringCapability) (*Intent, error)
}

// Params are validated, defaulted alert parameters.
type Params struct {
	Machine   string  `json:"machine"`
	Threshold float64 `json:"threshold"`
	Window    string  `json:"window"`
}

// CapabilitySummary is the catalog digest attached to non-match results
// so the user can see what is automatable.
type CapabilitySummary struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Result is the outcome of analyzing a prompt. Exactly one of the two
// payload shapes is populated: the matched fields when Matched is true,
// the ErrorType/NoMatchReason/AvailableCapabilities fields otherwise.
type Result struct {
	Matched bool `json:"matched"`

	// Matched payload
	CapabilityKey  string  `json:"capabilityKey,omitempty"`
	CapabilityName string  `json:"capabilityName,omitempty"`
	AlertTemplate  string  `json:"alertTemplate,omitempty"`
	Params         *Params `json:"params,omitempty"`
	Severity       string  `json:"severity,omitempty"`
	AlertName      string  `json:"alertName,omitempty"`
	Description    string  `json:"description,omitempty"`

	// Non-match payload
	ErrorType             string              `json:"errorType,omitempty"`
	NoMatchReason         string              `json:"noMatchReason,omitempty"`
	AvailableCapabilities []CapabilitySummary `json:"availableCapabilities,omitempty"`
}

// summarizeCapabilities builds the catalog digest for non-match results
func summarizeCapabilities(caps []database.MonitoringCapability) []CapabilitySummary {
	summaries := make([]CapabilitySummary, 0, len(caps))
	for _, c := range caps {
		summaries = append(summaries, CapabilitySummary{
			Key:         c.CapabilityKey,
			Name:        c.Name,
			Description: c.Description,
			Category:    c.Category,
		})
	}
	return summaries
}
