package handlers

import (
	"net/http"

	"github.com/noblinks/noblinks/internal/api"
	"github.com/noblinks/noblinks/internal/matcher"
	"github.com/noblinks/noblinks/internal/middleware"
	"github.com/noblinks/noblinks/internal/services"
	slacknotify "github.com/noblinks/noblinks/internal/slack"
)

// APIHandler handles the authenticated API endpoints for the UI
type APIHandler struct {
	alertService *services.AlertService
	matcher      *matcher.Matcher
	notifier     *slacknotify.Notifier
	events       *EventsHub
	production   bool
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(alertService *services.AlertService, m *matcher.Matcher, notifier *slacknotify.Notifier, events *EventsHub, production bool) *APIHandler {
	return &APIHandler{
		alertService: alertService,
		matcher:      m,
		notifier:     notifier,
		events:       events,
		production:   production,
	}
}

// SetupRoutes sets up all API routes
func (h *APIHandler) SetupRoutes(mux *http.ServeMux) {
	// Capability catalog
	mux.HandleFunc("GET /api/capabilities", h.handleListCapabilities)

	// AI-assisted alert configuration
	mux.HandleFunc("POST /api/chat/create-alert", h.handleAnalyzeAlert)

	// Alerts
	mux.HandleFunc("GET /api/alerts", h.handleListAlerts)
	mux.HandleFunc("POST /api/alerts", h.handleCreateAlert)
	mux.HandleFunc("GET /api/alerts/{uuid}", h.handleGetAlert)
	mux.HandleFunc("PATCH /api/alerts/{uuid}", h.handleUpdateAlertStatus)
	mux.HandleFunc("DELETE /api/alerts/{uuid}", h.handleDeleteAlert)

	// Slack settings
	mux.HandleFunc("GET /api/settings/slack", h.handleGetSlackSettings)
	mux.HandleFunc("PUT /api/settings/slack", h.handleUpdateSlackSettings)

	// Live alert events
	if h.events != nil {
		mux.HandleFunc("GET /api/events", h.events.HandleWS)
	}
}

// requireSession returns the authenticated, org-scoped session or writes
// a 401 and returns nil.
func (h *APIHandler) requireSession(w http.ResponseWriter, r *http.Request) *middleware.Session {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil || session.OrganizationID == "" {
		api.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return nil
	}
	return session
}
