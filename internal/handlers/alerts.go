package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/noblinks/noblinks/internal/api"
	"github.com/noblinks/noblinks/internal/database"
	"github.com/noblinks/noblinks/internal/services"
	"gorm.io/gorm"
)

// handleListAlerts handles GET /api/alerts?status=
func (h *APIHandler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	status := r.URL.Query().Get("status")
	alerts, err := database.ListAlerts(database.GetDB(), session.OrganizationID, status)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list alerts: %v", err))
		return
	}

	api.RespondJSON(w, http.StatusOK, api.AlertListResponse{Alerts: alerts})
}

// handleCreateAlert handles POST /api/alerts. The same validation runs
// whether the payload came from the AI matcher flow or was built by hand.
func (h *APIHandler) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	var req api.CreateAlertRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	alert, err := h.alertService.Create(session.OrganizationID, services.CreateAlertInput{
		CapabilityKey: req.CapabilityKey,
		Machine:       req.Machine,
		Threshold:     req.Threshold,
		Window:        req.Window,
		Severity:      req.Severity,
		Name:          req.Name,
		Description:   req.Description,
		CreatedBy:     session.Username,
		Force:         req.Force,
	})
	if err != nil {
		var validationErr *services.ValidationError
		var duplicateErr *services.DuplicateError
		switch {
		case errors.As(err, &validationErr):
			api.RespondError(w, http.StatusBadRequest, validationErr.Message)
		case errors.As(err, &duplicateErr):
			api.RespondDuplicateConflict(w, duplicateErr.Error(), duplicateErr.ExistingUUID)
		case errors.Is(err, services.ErrCapabilityNotFound):
			api.RespondError(w, http.StatusNotFound, "Capability not found")
		default:
			log.Printf("APIHandler: failed to create alert: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Failed to create alert")
		}
		return
	}

	h.events.BroadcastToOrg(session.OrganizationID, EventAlertCreated, alert)
	api.RespondJSON(w, http.StatusCreated, api.AlertResponse{Alert: alert})
}

// handleGetAlert handles GET /api/alerts/{uuid}
func (h *APIHandler) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	alert, err := database.GetAlertByUUID(database.GetDB(), session.OrganizationID, r.PathValue("uuid"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		api.RespondError(w, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get alert: %v", err))
		return
	}

	capability, err := database.GetCapabilityByID(database.GetDB(), alert.CapabilityID)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get capability: %v", err))
		return
	}

	api.RespondJSON(w, http.StatusOK, api.AlertWithCapabilityResponse{Alert: alert, Capability: capability})
}

// handleUpdateAlertStatus handles PATCH /api/alerts/{uuid}
func (h *APIHandler) handleUpdateAlertStatus(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	var req api.UpdateAlertStatusRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	alert, err := h.alertService.UpdateStatus(session.OrganizationID, r.PathValue("uuid"), req.Status)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			api.RespondError(w, http.StatusBadRequest, validationErr.Message)
		case errors.Is(err, gorm.ErrRecordNotFound):
			api.RespondError(w, http.StatusNotFound, "Alert not found")
		default:
			log.Printf("APIHandler: failed to update alert status: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Failed to update alert")
		}
		return
	}

	switch alert.Status {
	case database.AlertStatusFiring:
		h.notifier.NotifyFiring(alert)
	case database.AlertStatusResolved:
		h.notifier.NotifyResolved(alert)
	}
	h.events.BroadcastToOrg(session.OrganizationID, EventAlertStatusChanged, alert)

	api.RespondJSON(w, http.StatusOK, api.AlertResponse{Alert: alert})
}

// handleDeleteAlert handles DELETE /api/alerts/{uuid}
func (h *APIHandler) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	uuid := r.PathValue("uuid")
	err := database.DeleteAlertByUUID(database.GetDB(), session.OrganizationID, uuid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		api.RespondError(w, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete alert: %v", err))
		return
	}

	h.events.BroadcastToOrg(session.OrganizationID, EventAlertDeleted, map[string]string{"id": uuid})
	api.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
