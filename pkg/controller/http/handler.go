package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/secmon-lab/intake/pkg/usecase"
)

// IncidentHandler serves the intake endpoints
type IncidentHandler struct {
	uc usecase.IntakeUseCase
}

// NewIncidentHandler creates a new IncidentHandler
func NewIncidentHandler(uc usecase.IntakeUseCase) *IncidentHandler {
	return &IncidentHandler{uc: uc}
}

// HandleSubmit handles POST /api/incidents
func (h *IncidentHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitIncidentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.uc.Submit(r.Context(), req.Text, usecase.SubmitOptions{DryRun: req.DryRun})
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !outcome.Saved {
		status = http.StatusOK
	}
	writeJSON(w, r, status, newOutcomeResponse(outcome))
}

// HandleParse handles POST /api/parse
func (h *IncidentHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.uc.Parse(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newOutcomeResponse(outcome))
}

// HandleRow handles POST /api/rows
func (h *IncidentHandler) HandleRow(w http.ResponseWriter, r *http.Request) {
	var req SubmitRowRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if !req.Save {
		outcome, err := h.uc.RepairRow(r.Context(), req.Row)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, newOutcomeResponse(outcome))
		return
	}

	outcome, err := h.uc.SubmitRow(r.Context(), req.Row, usecase.SubmitOptions{DryRun: req.DryRun})
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !outcome.Saved {
		status = http.StatusOK
	}
	writeJSON(w, r, status, newOutcomeResponse(outcome))
}

// HandleGet handles GET /api/incidents/{id}
func (h *IncidentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := types.SubmissionID(chi.URLParam(r, "id"))

	entry, err := h.uc.Record(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRecordResponse(entry))
}
