package slack

import (
	"testing"

	"github.com/noblinks/noblinks/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupNotifierTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&database.SlackSettings{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db
	return db
}

func TestReloadDisabledWithoutSettings(t *testing.T) {
	setupNotifierTestDB(t)

	// No settings row at all
	n := NewNotifier()
	if n.enabled {
		t.Error("expected notifier disabled without settings")
	}
}

func TestReloadTracksStoredSettings(t *testing.T) {
	db := setupNotifierTestDB(t)

	settings := &database.SlackSettings{
		BotToken:      "xoxb-token",
		AlertsChannel: "#alerts",
		Enabled:       true,
	}
	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("failed to create settings: %v", err)
	}

	n := NewNotifier()
	if !n.enabled {
		t.Fatal("expected notifier enabled")
	}
	if n.channel != "#alerts" {
		t.Errorf("expected channel #alerts, got %q", n.channel)
	}
	if n.client == nil {
		t.Error("expected a client when enabled")
	}

	// Disable and reload: the client is dropped.
	settings.Enabled = false
	if err := database.UpdateSlackSettings(settings); err != nil {
		t.Fatalf("failed to update settings: %v", err)
	}
	n.Reload()
	if n.enabled || n.client != nil {
		t.Error("expected notifier disabled after reload")
	}
}

func TestReloadDisabledWhenIncomplete(t *testing.T) {
	db := setupNotifierTestDB(t)

	// Enabled flag set but no token: not active.
	if err := db.Create(&database.SlackSettings{AlertsChannel: "#alerts", Enabled: true}).Error; err != nil {
		t.Fatalf("failed to create settings: %v", err)
	}

	n := NewNotifier()
	if n.enabled {
		t.Error("expected notifier disabled without a bot token")
	}
}

func TestNotifyOnDisabledOrNilNotifier(t *testing.T) {
	setupNotifierTestDB(t)

	alert := &database.Alert{
		Name:     "Test alert",
		Machine:  "web-01",
		Severity: database.AlertSeverityWarning,
	}

	// Disabled notifier: no-op, no panic.
	n := NewNotifier()
	n.NotifyFiring(alert)
	n.NotifyResolved(alert)

	// Nil notifier: same.
	var nilNotifier *Notifier
	nilNotifier.NotifyFiring(alert)
	nilNotifier.NotifyResolved(alert)
}
