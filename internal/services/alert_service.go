// Package services holds the alert-side business logic: the creation
// pipeline (validation, duplicate guard, template expansion, persistence)
// and the lifecycle state machine.
package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/noblinks/noblinks/internal/database"
	"github.com/noblinks/noblinks/internal/matcher"
	"gorm.io/gorm"
)

// windowPattern accepts an integer plus a unit: seconds, minutes, hours
// or days (e.g. "30s", "5m", "1h", "1d").
var windowPattern = regexp.MustCompile(`^\d+[smhd]$`)

// ValidationError names the offending field of a create/update request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DuplicateError reports an existing alert for the same
// (organization, capability, machine) triple. Retrying with Force set
// bypasses the guard.
type DuplicateError struct {
	ExistingUUID string
	ExistingName string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("An alert %q already exists for this capability and machine.", e.ExistingName)
}

// ErrCapabilityNotFound means the referenced capability key is not in the
// catalog.
var ErrCapabilityNotFound = errors.New("capability not found")

// AlertService manages alert creation and lifecycle transitions
type AlertService struct {
	db *gorm.DB
}

// NewAlertService creates a new AlertService
func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: db}
}

// CreateAlertInput is the validated-on-entry input for Create. Threshold
// is a pointer so a missing value is distinguishable from 0.
type CreateAlertInput struct {
	CapabilityKey string
	Machine       string
	Threshold     *float64
	Window        string
	Severity      string
	Name          string
	Description   string
	CreatedBy     string
	Force         bool
}

// Create runs the full creation pipeline for one alert: field validation,
// capability resolution, duplicate guard, template expansion, insert.
// Validation applies identically whether the input came from the AI
// matcher or a direct API call. No partial writes occur: every check runs
// before the single insert.
func (s *AlertService) Create(orgID string, in CreateAlertInput) (*database.Alert, error) {
	capabilityKey := strings.TrimSpace(in.CapabilityKey)
	if capabilityKey == "" {
		return nil, &ValidationError{Field: "capabilityKey", Message: "capabilityKey is required"}
	}
	machine := strings.TrimSpace(in.Machine)
	if machine == "" {
		return nil, &ValidationError{Field: "machine", Message: "machine is required"}
	}
	if in.Threshold == nil {
		return nil, &ValidationError{Field: "threshold", Message: "threshold must be a number"}
	}
	if !windowPattern.MatchString(strings.TrimSpace(in.Window)) {
		return nil, &ValidationError{Field: "window", Message: "window must be a duration like 5m, 1h, 30s"}
	}
	window := strings.TrimSpace(in.Window)
	if in.Severity != "" && !isValidSeverity(in.Severity) {
		return nil, &ValidationError{
			Field:   "severity",
			Message: fmt.Sprintf("severity must be one of: %s", strings.Join(database.ValidAlertSeverities, ", ")),
		}
	}

	// Independent existence check: the catalog is re-resolved here even
	// when the key already passed through the matcher.
	capability, err := database.GetCapabilityByKey(s.db, capabilityKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCapabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve capability: %w", err)
	}

	// Duplicate guard, soft constraint: skipped entirely when Force is
	// set. The check and the insert below are separate statements, so two
	// concurrent requests can both pass — that duplicate is benign (see
	// FindDuplicateAlert).
	if !in.Force {
		existing, err := database.FindDuplicateAlert(s.db, orgID, capability.ID, machine)
		if err != nil {
			return nil, fmt.Errorf("duplicate check failed: %w", err)
		}
		if existing != nil {
			return nil, &DuplicateError{ExistingUUID: existing.UUID, ExistingName: existing.Name}
		}
	}

	promql := matcher.ExpandTemplate(capability.AlertTemplate, machine, *in.Threshold, window)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = fmt.Sprintf("%s - %s", capability.Name, machine)
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = fmt.Sprintf("%s (threshold: %s%%, window: %s)",
			capability.Description, matcher.FormatThreshold(*in.Threshold), window)
	}
	severity := in.Severity
	if severity == "" {
		severity = capability.SuggestedSeverity
	}

	alert := &database.Alert{
		OrganizationID: orgID,
		CapabilityID:   capability.ID,
		Machine:        machine,
		Threshold:      *in.Threshold,
		Window:         window,
		Severity:       severity,
		PromQLQuery:    promql,
		Name:           name,
		Description:    description,
		Status:         database.AlertStatusConfigured,
		CreatedBy:      in.CreatedBy,
	}
	if err := database.CreateAlert(s.db, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	return alert, nil
}

// allowedTransitions is the lifecycle state machine. The external
// evaluator moves a deployed alert to firing through the same endpoint,
// so active->firing is the only route into firing; no state is terminal.
var allowedTransitions = map[string][]string{
	database.AlertStatusConfigured: {database.AlertStatusActive},
	database.AlertStatusActive:     {database.AlertStatusFiring},
	database.AlertStatusFiring:     {database.AlertStatusResolved},
	database.AlertStatusResolved:   {database.AlertStatusConfigured},
}

// ValidateStatusTransition checks one lifecycle transition. Unknown
// target values and transitions outside the permitted set are rejected
// with a ValidationError listing what is allowed.
func ValidateStatusTransition(from, to string) error {
	if !isValidStatus(to) {
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("status must be one of: %s", strings.Join(database.ValidAlertStatuses, ", ")),
		}
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &ValidationError{
		Field: "status",
		Message: fmt.Sprintf("cannot transition from %s to %s (allowed: %s)",
			from, to, strings.Join(allowedTransitions[from], ", ")),
	}
}

// UpdateStatus applies a lifecycle transition to one of the
// organization's alerts.
func (s *AlertService) UpdateStatus(orgID, uuid, status string) (*database.Alert, error) {
	alert, err := database.GetAlertByUUID(s.db, orgID, uuid)
	if err != nil {
		return nil, err
	}
	if err := ValidateStatusTransition(alert.Status, status); err != nil {
		return nil, err
	}
	return database.UpdateAlertStatus(s.db, orgID, uuid, status)
}

func isValidSeverity(severity string) bool {
	for _, s := range database.ValidAlertSeverities {
		if s == severity {
			return true
		}
	}
	return false
}

func isValidStatus(status string) bool {
	for _, s := range database.ValidAlertStatuses {
		if s == status {
			return true
		}
	}
	return false
}
