// Package testhelpers provides additional data builders for testing
package testhelpers

import (
	"time"

	"github.com/noblinks/noblinks/internal/database"
)

// ========================================
// Capability Builder
// ========================================

// CapabilityBuilder builds MonitoringCapability instances for testing
type CapabilityBuilder struct {
	capability database.MonitoringCapability
}

// NewCapabilityBuilder creates a new capability builder with defaults
func NewCapabilityBuilder() *CapabilityBuilder {
	return &CapabilityBuilder{
		capability: database.MonitoringCapability{
			CapabilityKey:     "linux_memory_usage_high",
			Name:              "Linux Memory Usage High",
			Description:       "Alerts when memory usage on a Linux machine exceeds a threshold",
			Category:          "linux",
			Metric:            "node_memory_usage_percent",
			AlertTemplate:     `avg_over_time(node_memory_usage_percent{instance="$machine"}[$window]) > $threshold`,
			DefaultThreshold:  80,
			DefaultWindow:     "5m",
			SuggestedSeverity: database.AlertSeverityWarning,
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		},
	}
}

// WithID sets the capability ID
func (b *CapabilityBuilder) WithID(id uint) *CapabilityBuilder {
	b.capability.ID = id
	return b
}

// WithKey sets the capability key
func (b *CapabilityBuilder) WithKey(key string) *CapabilityBuilder {
	b.capability.CapabilityKey = key
	return b
}

// WithName sets the display name
func (b *CapabilityBuilder) WithName(name string) *CapabilityBuilder {
	b.capability.Name = name
	return b
}

// WithDescription sets the description
func (b *CapabilityBuilder) WithDescription(desc string) *CapabilityBuilder {
	b.capability.Description = desc
	return b
}

// WithCategory sets the category
func (b *CapabilityBuilder) WithCategory(category string) *CapabilityBuilder {
	b.capability.Category = category
	return b
}

// WithTemplate sets the alert template
func (b *CapabilityBuilder) WithTemplate(template string) *CapabilityBuilder {
	b.capability.AlertTemplate = template
	return b
}

// WithDefaults sets the default threshold and window
func (b *CapabilityBuilder) WithDefaults(threshold float64, window string) *CapabilityBuilder {
	b.capability.DefaultThreshold = threshold
	b.capability.DefaultWindow = window
	return b
}

// WithSuggestedSeverity sets the suggested severity
func (b *CapabilityBuilder) WithSuggestedSeverity(severity string) *CapabilityBuilder {
	b.capability.SuggestedSeverity = severity
	return b
}

// Build returns the constructed capability
func (b *CapabilityBuilder) Build() database.MonitoringCapability {
	return b.capability
}

// ========================================
// Alert Builder
// ========================================

// AlertBuilder builds Alert instances for testing
type AlertBuilder struct {
	alert database.Alert
}

// NewAlertBuilder creates a new alert builder with defaults
func NewAlertBuilder() *AlertBuilder {
	return &AlertBuilder{
		alert: database.Alert{
			Machine:     "web-01",
			Threshold:   80,
			Window:      "5m",
			Severity:    database.AlertSeverityWarning,
			PromQLQuery: `avg_over_time(node_memory_usage_percent{instance="web-01"}[5m]) > 80`,
			Name:        "Linux Memory Usage High - web-01",
			Description: "Test alert for unit tests",
			Status:      database.AlertStatusConfigured,
			CreatedBy:   "test-user",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		},
	}
}

// WithOrganization sets the owning organization
func (b *AlertBuilder) WithOrganization(orgID string) *AlertBuilder {
	b.alert.OrganizationID = orgID
	return b
}

// WithCapability sets the capability ID
func (b *AlertBuilder) WithCapability(capabilityID uint) *AlertBuilder {
	b.alert.CapabilityID = capabilityID
	return b
}

// WithMachine sets the machine identifier
func (b *AlertBuilder) WithMachine(machine string) *AlertBuilder {
	b.alert.Machine = machine
	return b
}

// WithThreshold sets the threshold
func (b *AlertBuilder) WithThreshold(threshold float64) *AlertBuilder {
	b.alert.Threshold = threshold
	return b
}

// WithWindow sets the evaluation window
func (b *AlertBuilder) WithWindow(window string) *AlertBuilder {
	b.alert.Window = window
	return b
}

// WithSeverity sets the severity
func (b *AlertBuilder) WithSeverity(severity string) *AlertBuilder {
	b.alert.Severity = severity
	return b
}

// WithName sets the alert name
func (b *AlertBuilder) WithName(name string) *AlertBuilder {
	b.alert.Name = name
	return b
}

// WithStatus sets the alert status
func (b *AlertBuilder) WithStatus(status string) *AlertBuilder {
	b.alert.Status = status
	return b
}

// Build returns the constructed alert
func (b *AlertBuilder) Build() database.Alert {
	return b.alert
}
