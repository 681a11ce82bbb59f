package handlers

import (
	"fmt"
	"net/http"

	"github.com/noblinks/noblinks/internal/api"
	"github.com/noblinks/noblinks/internal/database"
)

// handleGetSlackSettings handles GET /api/settings/slack
func (h *APIHandler) handleGetSlackSettings(w http.ResponseWriter, r *http.Request) {
	if h.requireSession(w, r) == nil {
		return
	}

	settings, err := database.GetSlackSettings()
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get Slack settings: %v", err))
		return
	}

	// Never echo the token back to the UI
	settings.BotToken = ""
	api.RespondJSON(w, http.StatusOK, settings)
}

// handleUpdateSlackSettings handles PUT /api/settings/slack
func (h *APIHandler) handleUpdateSlackSettings(w http.ResponseWriter, r *http.Request) {
	if h.requireSession(w, r) == nil {
		return
	}

	var req api.UpdateSlackSettingsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := database.GetSlackSettings()
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get Slack settings: %v", err))
		return
	}

	// An empty token in the request keeps the stored one
	if req.BotToken != "" {
		settings.BotToken = req.BotToken
	}
	settings.AlertsChannel = req.AlertsChannel
	settings.Enabled = req.Enabled

	if err := database.UpdateSlackSettings(settings); err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to update Slack settings: %v", err))
		return
	}

	if h.notifier != nil {
		h.notifier.Reload()
	}

	settings.BotToken = ""
	api.RespondJSON(w, http.StatusOK, settings)
}
