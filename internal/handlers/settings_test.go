package handlers

import (
	"net/http"
	"testing"

	"github.com/noblinks/noblinks/internal/api"
	"github.com/noblinks/noblinks/internal/database"
	"github.com/noblinks/noblinks/internal/matcher"
	"github.com/noblinks/noblinks/internal/testhelpers"
)

func TestSlackSettingsUpdateAndRead(t *testing.T) {
	mux, org := setupAPITest(t, testhelpers.NewStubExtractor(&matcher.Intent{}))

	var updated database.SlackSettings
	asOrg(testhelpers.NewHTTPTestContext(t, "PUT", "/api/settings/slack", nil).
		WithJSONBody(api.UpdateSlackSettingsRequest{
			BotToken:      "xoxb-secret",
			AlertsChannel: "#alerts",
			Enabled:       true,
		}), org).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&updated)

	if updated.AlertsChannel != "#alerts" || !updated.Enabled {
		t.Errorf("unexpected settings %+v", updated)
	}
	if updated.BotToken != "" {
		t.Error("token must never be echoed back")
	}

	// The stored token survives even though responses omit it.
	stored, err := database.GetSlackSettings()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if stored.BotToken != "xoxb-secret" {
		t.Errorf("expected stored token, got %q", stored.BotToken)
	}

	var fetched database.SlackSettings
	asOrg(testhelpers.NewHTTPTestContext(t, "GET", "/api/settings/slack", nil), org).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&fetched)
	if fetched.BotToken != "" {
		t.Error("token must never be echoed back on read")
	}
	if fetched.AlertsChannel != "#alerts" {
		t.Errorf("unexpected channel %q", fetched.AlertsChannel)
	}
}

func TestSlackSettingsEmptyTokenKeepsStored(t *testing.T) {
	mux, org := setupAPITest(t, testhelpers.NewStubExtractor(&matcher.Intent{}))

	asOrg(testhelpers.NewHTTPTestContext(t, "PUT", "/api/settings/slack", nil).
		WithJSONBody(api.UpdateSlackSettingsRequest{BotToken: "xoxb-secret", AlertsChannel: "#alerts", Enabled: true}), org).
		Execute(mux).
		AssertStatus(http.StatusOK)

	// Update the channel without re-sending the token.
	asOrg(testhelpers.NewHTTPTestContext(t, "PUT", "/api/settings/slack", nil).
		WithJSONBody(api.UpdateSlackSettingsRequest{AlertsChannel: "#ops", Enabled: true}), org).
		Execute(mux).
		AssertStatus(http.StatusOK)

	stored, err := database.GetSlackSettings()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if stored.BotToken != "xoxb-secret" {
		t.Errorf("empty token overwrote the stored one: %q", stored.BotToken)
	}
	if stored.AlertsChannel != "#ops" {
		t.Errorf("expected updated channel, got %q", stored.AlertsChannel)
	}
}
