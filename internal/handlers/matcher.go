package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/noblinks/noblinks/internal/ai"
	"github.com/noblinks/noblinks/internal/api"
	"github.com/noblinks/noblinks/internal/matcher"
)

// handleAnalyzeAlert handles POST /api/chat/create-alert: it runs the
// matcher pipeline on a free-text prompt and returns either a matched
// configuration for client review or a structured non-match.
func (h *APIHandler) handleAnalyzeAlert(w http.ResponseWriter, r *http.Request) {
	if h.requireSession(w, r) == nil {
		return
	}

	var req api.AnalyzeAlertRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	result, err := h.matcher.Analyze(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, matcher.ErrEmptyCatalog) {
			api.RespondError(w, http.StatusInternalServerError, "No monitoring capabilities configured")
			return
		}
		log.Printf("APIHandler: analyze failed (%s): %v", ai.Kind(err), err)
		api.RespondErrorWithCode(w, ai.HTTPStatus(err), ai.Kind(err), ai.UserMessage(err, h.production))
		return
	}

	api.RespondJSON(w, http.StatusOK, result)
}
