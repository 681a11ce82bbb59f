package matcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/noblinks/noblinks/internal/database"
	"gorm.io/gorm"
)

// ErrEmptyCatalog is returned when no monitoring capabilities are
// configured. This is a deployment problem, not a user mistake.
var ErrEmptyCatalog = errors.New("no monitoring capabilities configured")

// MaxPromptLength bounds the free-text prompt
const MaxPromptLength = 2000

// Matcher runs the analyze pipeline: catalog read, intent extraction,
// validation against the catalog, and defaulting.
type Matcher struct {
	db        *gorm.DB
	extractor IntentExtractor
}

// New creates a Matcher
func New(db *gorm.DB, extractor IntentExtractor) *Matcher {
	return &Matcher{db: db, extractor: extractor}
}

// Analyze translates a free-text prompt into either a validated match or
// a structured non-match. Provider failures are returned as errors from
// the ai package; every other outcome is a Result.
func (m *Matcher) Analyze(ctx context.Context, prompt string) (*Result, error) {
	capabilities, err := database.ListCapabilities(m.db, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load capability catalog: %w", err)
	}
	if len(capabilities) == 0 {
		return nil, ErrEmptyCatalog
	}

	intent, err := m.extractor.ExtractIntent(ctx, prompt, capabilities)
	if err != nil {
		return nil, err
	}

	return m.validate(intent, capabilities), nil
}

// validate is the trust boundary between the generative extractor and the
// rest of the pipeline. No unvalidated extractor value passes through.
func (m *Matcher) validate(intent *Intent, capabilities []database.MonitoringCapability) *Result {
	if !intent.Matched {
		reason := intent.NoMatchReason
		if reason == "" {
			reason = "Could not match your request to any available capability."
		}
		return &Result{
			Matched:               false,
			ErrorType:             ErrTypeNoMatch,
			NoMatchReason:         reason,
			AvailableCapabilities: summarizeCapabilities(capabilities),
		}
	}

	// A claimed match without a key, params or target machine is not
	// trustworthy enough to act on.
	if intent.CapabilityKey == "" || intent.Params == nil || strings.TrimSpace(intent.Params.Machine) == "" {
		log.Printf("Matcher: extractor returned incomplete match (key=%q)", intent.CapabilityKey)
		return &Result{
			Matched:               false,
			ErrorType:             ErrTypeIncomplete,
			NoMatchReason:         "The AI returned an incomplete match. Please try again with a clearer request.",
			AvailableCapabilities: summarizeCapabilities(capabilities),
		}
	}

	// Closed-world check: the key must resolve against the catalog we
	// supplied. A key that does not is a hallucination.
	capability := findCapability(capabilities, intent.CapabilityKey)
	if capability == nil {
		log.Printf("Matcher: extractor selected invalid capability %q", intent.CapabilityKey)
		return &Result{
			Matched:               false,
			ErrorType:             ErrTypeInvalidCapability,
			NoMatchReason:         fmt.Sprintf("The AI selected an invalid capability %q. Please try again.", intent.CapabilityKey),
			AvailableCapabilities: summarizeCapabilities(capabilities),
		}
	}

	// Fill anything the extractor omitted from the capability's defaults.
	params := &Params{
		Machine: strings.TrimSpace(intent.Params.Machine),
		Window:  strings.TrimSpace(intent.Params.Window),
	}
	if intent.Params.Threshold != nil {
		params.Threshold = *intent.Params.Threshold
	} else {
		params.Threshold = capability.DefaultThreshold
	}
	if params.Window == "" {
		params.Window = capability.DefaultWindow
	}

	severity := intent.Severity
	if severity == "" {
		severity = capability.SuggestedSeverity
	}
	alertName := strings.TrimSpace(intent.AlertName)
	if alertName == "" {
		alertName = fmt.Sprintf("%s - %s", capability.Name, params.Machine)
	}
	description := strings.TrimSpace(intent.Description)
	if description == "" {
		description = capability.Description
	}

	return &Result{
		Matched:        true,
		CapabilityKey:  capability.CapabilityKey,
		CapabilityName: capability.Name,
		AlertTemplate:  capability.AlertTemplate,
		Params:         params,
		Severity:       severity,
		AlertName:      alertName,
		Description:    description,
	}
}

// findCapability resolves a key against the loaded catalog
func findCapability(capabilities []database.MonitoringCapability, key string) *database.MonitoringCapability {
	for i := range capabilities {
		if capabilities[i].CapabilityKey == key {
			return &capabilities[i]
		}
	}
	return nil
}
