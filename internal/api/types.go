package api

import (
	"github.com/noblinks/noblinks/internal/database"
)

// ========== Matcher Types ==========

// AnalyzeAlertRequest is the request body for POST /api/chat/create-alert.
type AnalyzeAlertRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=2000"`
}

// ========== Alert Types ==========

// CreateAlertRequest is the request body for POST /api/alerts. Threshold
// is a pointer so an omitted value is distinguishable from 0. The
// field-specific checks live in the alert service, not in tags, so the
// same validation runs for inputs that bypass this endpoint.
type CreateAlertRequest struct {
	CapabilityKey string   `json:"capabilityKey"`
	Machine       string   `json:"machine"`
	Threshold     *float64 `json:"threshold"`
	Window        string   `json:"window"`
	Severity      string   `json:"severity,omitempty"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	Force         bool     `json:"force,omitempty"`
}

// UpdateAlertStatusRequest is the request body for PATCH /api/alerts/{id}.
type UpdateAlertStatusRequest struct {
	Status string `json:"status"`
}

// AlertResponse wraps a single alert.
type AlertResponse struct {
	Alert *database.Alert `json:"alert"`
}

// AlertWithCapabilityResponse is the response for GET /api/alerts/{id}.
type AlertWithCapabilityResponse struct {
	Alert      *database.Alert                `json:"alert"`
	Capability *database.MonitoringCapability `json:"capability"`
}

// AlertListResponse is the response for GET /api/alerts.
type AlertListResponse struct {
	Alerts []database.Alert `json:"alerts"`
}

// ========== Capability Types ==========

// CapabilityListResponse is the response for GET /api/capabilities.
type CapabilityListResponse struct {
	Capabilities []database.MonitoringCapability `json:"capabilities"`
}

// ========== Settings Types ==========

// UpdateSlackSettingsRequest is the request body for PUT /api/settings/slack.
type UpdateSlackSettingsRequest struct {
	BotToken      string `json:"bot_token"`
	AlertsChannel string `json:"alerts_channel"`
	Enabled       bool   `json:"enabled"`
}
