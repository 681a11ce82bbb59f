package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noblinks/noblinks/internal/ai"
	"github.com/noblinks/noblinks/internal/database"
)

// intentSchema is the JSON schema the provider's structured output is
// constrained to. It mirrors the Intent type; severity values and the
// closed-world key rule are enforced again by the validator because the
// model is not guaranteed to honor the schema descriptions.
var intentSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "matched": {
      "type": "boolean",
      "description": "Whether a matching capability was found"
    },
    "capabilityKey": {
      "type": ["string", "null"],
      "description": "The matching capability key from the list. Never invent a new one."
    },
    "params": {
      "type": ["object", "null"],
      "additionalProperties": false,
      "description": "Extracted parameters from the user message",
      "properties": {
        "machine": {
          "type": "string",
          "description": "Target machine name/instance"
        },
        "threshold": {
          "type": "number",
          "description": "Alert threshold value"
        },
        "window": {
          "type": "string",
          "description": "Time window duration like 5m, 1h, 30s"
        }
      },
      "required": ["machine", "threshold", "window"]
    },
    "severity": {
      "type": ["string", "null"],
      "description": "Alert severity level: critical, warning or info"
    },
    "alertName": {
      "type": ["string", "null"],
      "description": "Human-readable name for the alert"
    },
    "description": {
      "type": ["string", "null"],
      "description": "Brief description of what this alert monitors"
    },
    "noMatchReason": {
      "type": ["string", "null"],
      "description": "Explanation of why no capability matched, if matched is false"
    }
  },
  "required": ["matched", "capabilityKey", "params", "severity", "alertName", "description", "noMatchReason"]
}`)

// LLMExtractor implements IntentExtractor against a generative-model
// provider.
type LLMExtractor struct {
	client *ai.Client
}

// NewLLMExtractor creates an extractor backed by the given provider client
func NewLLMExtractor(client *ai.Client) *LLMExtractor {
	return &LLMExtractor{client: client}
}

// buildSystemPrompt renders the full capability catalog into the system
// instruction. The extractor may only select keys that appear here.
func buildSystemPrompt(capabilities []database.MonitoringCapability) string {
	var capList strings.Builder
	for _, c := range capabilities {
		params, _ := json.Marshal(c.Parameters)
		fmt.Fprintf(&capList, `- Key: %s
  Name: %s
  Description: %s
  Category: %s
  Parameters: %s
  Default Threshold: %s
  Default Window: %s
  Suggested Severity: %s
`,
			c.CapabilityKey, c.Name, c.Description, c.Category,
			string(params), FormatThreshold(c.DefaultThreshold),
			c.DefaultWindow, c.SuggestedSeverity)
	}

	return fmt.Sprintf(`You are an alert configuration assistant for a monitoring platform.

Available monitoring capabilities:
%s
RULES:
1. You MUST select a capabilityKey from the list above. Never invent a new one.
2. Extract parameters from the user's message.
3. If threshold is not specified, use the capability's defaultThreshold.
4. If window/duration is not specified, use the capability's defaultWindow.
5. If severity is not specified, use the capability's suggestedSeverity.
6. Generate a clear, descriptive alertName.
7. If the user's request doesn't match ANY capability, set matched to false and explain why in noMatchReason.
8. The machine parameter is the target server/instance name mentioned by the user.
9. Window must be a duration string like 5m, 1h, 30s, 1d.`, capList.String())
}

// ExtractIntent submits the prompt plus catalog to the provider and
// decodes the structured result.
func (e *LLMExtractor) ExtractIntent(ctx context.Context, prompt string, capabilities []database.MonitoringCapability) (*Intent, error) {
	content, err := e.client.CompleteJSON(ctx, buildSystemPrompt(capabilities), prompt, "alert_intent", intentSchema)
	if err != nil {
		return nil, err
	}

	// Remove markdown code fences if the model wrapped its output
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var intent Intent
	if err := json.Unmarshal([]byte(content), &intent); err != nil {
		return nil, &ai.UnknownProviderError{Provider: "extractor", Detail: "model returned invalid JSON"}
	}

	return &intent, nil
}
