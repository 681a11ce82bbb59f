package handlers

import (
	"fmt"
	"net/http"

	"github.com/noblinks/noblinks/internal/api"
	"github.com/noblinks/noblinks/internal/database"
)

// handleListCapabilities handles GET /api/capabilities?category=
func (h *APIHandler) handleListCapabilities(w http.ResponseWriter, r *http.Request) {
	if h.requireSession(w, r) == nil {
		return
	}

	category := r.URL.Query().Get("category")
	capabilities, err := database.ListCapabilities(database.GetDB(), category)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list capabilities: %v", err))
		return
	}

	api.RespondJSON(w, http.StatusOK, api.CapabilityListResponse{Capabilities: capabilities})
}
