package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/noblinks/noblinks/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAlertTestDB creates an in-memory SQLite database with the alert
// tables and a seeded organization plus capability
func setupAlertTestDB(t *testing.T) (*gorm.DB, *database.Organization, *database.MonitoringCapability) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	err = db.AutoMigrate(
		&database.Organization{},
		&database.MonitoringCapability{},
		&database.Alert{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	org := &database.Organization{Name: "Test Org"}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create organization: %v", err)
	}

	capability := &database.MonitoringCapability{
		CapabilityKey:     "linux_memory_usage_high",
		Name:              "Linux Memory Usage High",
		Description:       "Alerts when memory usage on a Linux machine exceeds a threshold",
		Category:          "linux",
		Metric:            "node_memory_usage_percent",
		AlertTemplate:     `avg_over_time(node_memory_usage_percent{instance="$machine"}[$window]) > $threshold`,
		DefaultThreshold:  80,
		DefaultWindow:     "5m",
		SuggestedSeverity: database.AlertSeverityWarning,
	}
	if err := db.Create(capability).Error; err != nil {
		t.Fatalf("failed to create capability: %v", err)
	}

	return db, org, capability
}

func floatPtr(v float64) *float64 {
	return &v
}

func validInput() CreateAlertInput {
	return CreateAlertInput{
		CapabilityKey: "linux_memory_usage_high",
		Machine:       "web-01",
		Threshold:     floatPtr(90),
		Window:        "5m",
		CreatedBy:     "admin",
	}
}

func TestCreateAlertExpandsTemplate(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	alert, err := svc.Create(org.ID, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `avg_over_time(node_memory_usage_percent{instance="web-01"}[5m]) > 90`
	if alert.PromQLQuery != expected {
		t.Errorf("expected query %q, got %q", expected, alert.PromQLQuery)
	}
	if alert.Status != database.AlertStatusConfigured {
		t.Errorf("expected initial status configured, got %q", alert.Status)
	}
	if alert.UUID == "" {
		t.Error("expected alert UUID to be assigned")
	}
	if alert.OrganizationID != org.ID {
		t.Errorf("alert not scoped to organization: %q", alert.OrganizationID)
	}
}

func TestCreateAlertDefaultsNameDescriptionSeverity(t *testing.T) {
	db, org, capability := setupAlertTestDB(t)
	svc := NewAlertService(db)

	alert, err := svc.Create(org.ID, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if alert.Name != "Linux Memory Usage High - web-01" {
		t.Errorf("unexpected default name %q", alert.Name)
	}
	if !strings.Contains(alert.Description, capability.Description) ||
		!strings.Contains(alert.Description, "threshold: 90%") ||
		!strings.Contains(alert.Description, "window: 5m") {
		t.Errorf("unexpected default description %q", alert.Description)
	}
	if alert.Severity != database.AlertSeverityWarning {
		t.Errorf("expected suggested severity, got %q", alert.Severity)
	}
}

func TestCreateAlertKeepsExplicitFields(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	in := validInput()
	in.Name = "My custom alert"
	in.Description = "Custom description"
	in.Severity = database.AlertSeverityCritical

	alert, err := svc.Create(org.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Name != "My custom alert" || alert.Description != "Custom description" {
		t.Errorf("explicit name/description overwritten: %q / %q", alert.Name, alert.Description)
	}
	if alert.Severity != database.AlertSeverityCritical {
		t.Errorf("explicit severity overwritten: %q", alert.Severity)
	}
}

func TestCreateAlertFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *CreateAlertInput)
		wantErr string
	}{
		{
			name:    "missing capability key",
			mutate:  func(in *CreateAlertInput) { in.CapabilityKey = "" },
			wantErr: "capabilityKey",
		},
		{
			name:    "missing machine",
			mutate:  func(in *CreateAlertInput) { in.Machine = "  " },
			wantErr: "machine",
		},
		{
			name:    "missing threshold",
			mutate:  func(in *CreateAlertInput) { in.Threshold = nil },
			wantErr: "threshold",
		},
		{
			name:    "invalid severity",
			mutate:  func(in *CreateAlertInput) { in.Severity = "urgent" },
			wantErr: "severity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, org, _ := setupAlertTestDB(t)
			svc := NewAlertService(db)

			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(org.ID, in)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Field != tt.wantErr {
				t.Errorf("expected field %q, got %q", tt.wantErr, valErr.Field)
			}
		})
	}
}

func TestCreateAlertWindowValidation(t *testing.T) {
	valid := []string{"30s", "5m", "1h", "1d", "120m"}
	invalid := []string{"", "5", "m5", "5 m", "5mm", "1w", "-5m", "5.5m"}

	for _, window := range valid {
		t.Run("accepts "+window, func(t *testing.T) {
			db, org, _ := setupAlertTestDB(t)
			svc := NewAlertService(db)

			in := validInput()
			in.Window = window
			if _, err := svc.Create(org.ID, in); err != nil {
				t.Errorf("expected window %q to be accepted: %v", window, err)
			}
		})
	}

	for _, window := range invalid {
		t.Run("rejects "+window, func(t *testing.T) {
			db, org, _ := setupAlertTestDB(t)
			svc := NewAlertService(db)

			in := validInput()
			in.Window = window
			_, err := svc.Create(org.ID, in)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError for window %q, got %v", window, err)
			}
			if valErr.Field != "window" {
				t.Errorf("expected field window, got %q", valErr.Field)
			}
		})
	}
}

func TestCreateAlertUnknownCapability(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	in := validInput()
	in.CapabilityKey = "does_not_exist"

	_, err := svc.Create(org.ID, in)
	if !errors.Is(err, ErrCapabilityNotFound) {
		t.Fatalf("expected ErrCapabilityNotFound, got %v", err)
	}
}

func TestCreateAlertDuplicateGuard(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	first, err := svc.Create(org.ID, validInput())
	if err != nil {
		t.Fatalf("unexpected error creating first alert: %v", err)
	}

	_, err = svc.Create(org.ID, validInput())
	var dupErr *DuplicateError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dupErr.ExistingUUID != first.UUID {
		t.Errorf("expected existing id %q, got %q", first.UUID, dupErr.ExistingUUID)
	}
	if dupErr.ExistingName != first.Name {
		t.Errorf("expected existing name %q, got %q", first.Name, dupErr.ExistingName)
	}
}

func TestCreateAlertForceBypassesDuplicateGuard(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	first, err := svc.Create(org.ID, validInput())
	if err != nil {
		t.Fatalf("unexpected error creating first alert: %v", err)
	}

	in := validInput()
	in.Force = true
	second, err := svc.Create(org.ID, in)
	if err != nil {
		t.Fatalf("expected forced duplicate to succeed, got %v", err)
	}
	if second.UUID == first.UUID {
		t.Error("forced duplicate must be an independent alert")
	}

	alerts, err := database.ListAlerts(db, org.ID, "")
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(alerts))
	}
}

func TestCreateAlertDuplicateGuardScopedToMachine(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	if _, err := svc.Create(org.ID, validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := validInput()
	in.Machine = "web-02"
	if _, err := svc.Create(org.ID, in); err != nil {
		t.Errorf("same capability on another machine must not be a duplicate: %v", err)
	}
}

func TestCreateAlertDuplicateGuardScopedToOrganization(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	otherOrg := &database.Organization{Name: "Other Org"}
	if err := db.Create(otherOrg).Error; err != nil {
		t.Fatalf("failed to create second organization: %v", err)
	}

	if _, err := svc.Create(org.ID, validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(otherOrg.ID, validInput()); err != nil {
		t.Errorf("duplicate guard leaked across organizations: %v", err)
	}
}

func TestValidateStatusTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{database.AlertStatusConfigured, database.AlertStatusActive, true},
		{database.AlertStatusActive, database.AlertStatusFiring, true},
		{database.AlertStatusFiring, database.AlertStatusResolved, true},
		{database.AlertStatusResolved, database.AlertStatusConfigured, true},
		{database.AlertStatusConfigured, database.AlertStatusFiring, false},
		{database.AlertStatusConfigured, database.AlertStatusResolved, false},
		{database.AlertStatusActive, database.AlertStatusConfigured, false},
		{database.AlertStatusActive, database.AlertStatusResolved, false},
		{database.AlertStatusFiring, database.AlertStatusActive, false},
		{database.AlertStatusFiring, database.AlertStatusConfigured, false},
		{database.AlertStatusResolved, database.AlertStatusActive, false},
		{database.AlertStatusResolved, database.AlertStatusFiring, false},
		{database.AlertStatusConfigured, "deleted", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			err := ValidateStatusTransition(tt.from, tt.to)
			if tt.allowed && err != nil {
				t.Errorf("expected transition to be allowed: %v", err)
			}
			if !tt.allowed {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
			}
		})
	}
}

func TestUpdateStatusFullLifecycle(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	alert, err := svc.Create(org.ID, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, status := range []string{
		database.AlertStatusActive,
		database.AlertStatusFiring,
		database.AlertStatusResolved,
		database.AlertStatusConfigured,
	} {
		updated, err := svc.UpdateStatus(org.ID, alert.UUID, status)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if updated.Status != status {
			t.Errorf("expected status %q, got %q", status, updated.Status)
		}
	}
}

func TestUpdateStatusRejectsSkippedStates(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	alert, err := svc.Create(org.ID, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateStatus(org.ID, alert.UUID, database.AlertStatusFiring)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The failed transition must not have moved the alert.
	stored, err := database.GetAlertByUUID(db, org.ID, alert.UUID)
	if err != nil {
		t.Fatalf("failed to reload alert: %v", err)
	}
	if stored.Status != database.AlertStatusConfigured {
		t.Errorf("rejected transition changed status to %q", stored.Status)
	}
}

func TestUpdateStatusScopedToOrganization(t *testing.T) {
	db, org, _ := setupAlertTestDB(t)
	svc := NewAlertService(db)

	otherOrg := &database.Organization{Name: "Other Org"}
	if err := db.Create(otherOrg).Error; err != nil {
		t.Fatalf("failed to create second organization: %v", err)
	}

	alert, err := svc.Create(org.ID, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateStatus(otherOrg.ID, alert.UUID, database.AlertStatusActive)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found across organizations, got %v", err)
	}
}
