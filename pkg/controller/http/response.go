package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/usecase"
	"github.com/secmon-lab/intake/pkg/utils/apperr"
)

var errTagBadRequest = goerr.NewTag("bad_request")

// RecordResponse is the JSON form of an outcome or a stored entry
type RecordResponse struct {
	ID         string            `json:"id,omitempty"`
	Code       string            `json:"code,omitempty"`
	Fields     []string          `json:"fields"`
	Record     map[string]string `json:"record"`
	Summary    string            `json:"summary,omitempty"`
	Advisories []model.Advisory  `json:"advisories"`
	Saved      bool              `json:"saved"`
	ReportedAt *time.Time        `json:"reported_at,omitempty"`
}

func newRecordResponse(entry *model.Entry) *RecordResponse {
	resp := &RecordResponse{
		ID:         entry.ID.String(),
		Code:       entry.Code(),
		Fields:     entry.Record.Fields(),
		Record:     entry.Record.Map(),
		Advisories: []model.Advisory{},
	}
	if !entry.ReportedAt.IsZero() {
		reportedAt := entry.ReportedAt
		resp.ReportedAt = &reportedAt
	}
	return resp
}

func newOutcomeResponse(outcome *model.Outcome) *RecordResponse {
	resp := newRecordResponse(outcome.Entry)
	resp.Summary = outcome.Summary
	resp.Saved = outcome.Saved
	if len(outcome.Advisories) > 0 {
		resp.Advisories = outcome.Advisories
	}
	return resp
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to status codes. Unexpected errors are logged
// and reported without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *model.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, r, http.StatusUnprocessableEntity, map[string]any{
			"error":   missing.Error(),
			"missing": missing.Reasons(),
		})

	case goerr.HasTag(err, errTagBadRequest), goerr.HasTag(err, model.ErrTagEmptyInput):
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, model.ErrRecordNotFound):
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "record not found"})

	case goerr.HasTag(err, usecase.ErrTagUnsupported):
		writeJSON(w, r, http.StatusNotImplemented, map[string]string{"error": err.Error()})

	default:
		apperr.Handle(r.Context(), err)
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
