package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Organization is the tenant boundary. Every alert read/write is scoped
// to one organization; two organizations never see each other's records.
type Organization struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID if none was provided
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// MonitoringCapability is one entry of the closed-world alert catalog: a
// named, parameterized query template plus defaults. Rows are seeded from
// the embedded catalog file and are read-only at request time.
type MonitoringCapability struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CapabilityKey     string    `gorm:"uniqueIndex;size:128;not null" json:"capability_key"` // stable identifier (e.g. "linux_memory_usage_high")
	Name              string    `gorm:"size:255;not null" json:"name"`
	Description       string    `gorm:"type:text" json:"description"`
	Category          string    `gorm:"size:64;index" json:"category"`
	Metric            string    `gorm:"size:255" json:"metric"`
	Parameters        JSONB     `gorm:"type:jsonb" json:"parameters"` // parameter name -> primitive type
	AlertTemplate     string    `gorm:"type:text;not null" json:"alert_template"`
	DefaultThreshold  float64   `json:"default_threshold"`
	DefaultWindow     string    `gorm:"size:16" json:"default_window"`
	SuggestedSeverity string    `gorm:"size:16" json:"suggested_severity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AlertSeverity levels
const (
	AlertSeverityCritical = "critical"
	AlertSeverityWarning  = "warning"
	AlertSeverityInfo     = "info"
)

// ValidAlertSeverities lists the accepted severity values
var ValidAlertSeverities = []string{AlertSeverityCritical, AlertSeverityWarning, AlertSeverityInfo}

// Alert lifecycle states
const (
	AlertStatusConfigured = "configured" // created, not yet deployed
	AlertStatusActive     = "active"     // deployed, not firing
	AlertStatusFiring     = "firing"     // threshold breached
	AlertStatusResolved   = "resolved"   // breach cleared
)

// ValidAlertStatuses lists the accepted lifecycle states
var ValidAlertStatuses = []string{AlertStatusConfigured, AlertStatusActive, AlertStatusFiring, AlertStatusResolved}

// Alert is a persisted, tenant-scoped alert configuration produced by the
// matcher pipeline (or a direct API call). The system stores configuration
// only; evaluation against live metrics happens elsewhere.
//
// Uniqueness of (organization_id, capability_id, machine) is a soft
// constraint checked at creation time and bypassable with force — there is
// deliberately no unique index on the triple.
type Alert struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UUID           string    `gorm:"uniqueIndex;size:36;not null" json:"id"`
	OrganizationID string    `gorm:"size:36;index;not null" json:"organization_id"`
	CapabilityID   uint      `gorm:"not null;index" json:"capability_id"`
	Machine        string    `gorm:"size:255;not null" json:"machine"`
	Threshold      float64   `json:"threshold"`
	Window         string    `gorm:"size:16;not null" json:"window"` // duration string, e.g. "5m"
	Severity       string    `gorm:"size:16;not null" json:"severity"`
	PromQLQuery    string    `gorm:"type:text;not null" json:"promql_query"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Status         string    `gorm:"size:16;default:configured;index" json:"status"`
	CreatedBy      string    `gorm:"size:255" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Capability *MonitoringCapability `gorm:"foreignKey:CapabilityID" json:"capability,omitempty"`
}

// BeforeCreate assigns a UUID if none was provided
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = AlertStatusConfigured
	}
	return nil
}

// SlackSettings stores Slack notification configuration
type SlackSettings struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BotToken      string    `gorm:"type:text" json:"bot_token"`
	AlertsChannel string    `gorm:"size:255" json:"alerts_channel"`
	Enabled       bool      `gorm:"default:false" json:"enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsConfigured returns true if the bot token and channel are set
func (s *SlackSettings) IsConfigured() bool {
	return s.BotToken != "" && s.AlertsChannel != ""
}

// IsActive returns true if Slack notifications are enabled and configured
func (s *SlackSettings) IsActive() bool {
	return s.Enabled && s.IsConfigured()
}
