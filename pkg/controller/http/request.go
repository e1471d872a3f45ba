package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
)

var validate = validator.New()

// maxBodyBytes bounds request bodies. Text length itself is not limited.
const maxBodyBytes = 1 << 20

// SubmitIncidentRequest is the body of POST /api/incidents
type SubmitIncidentRequest struct {
	Text   string `json:"text" validate:"required"`
	DryRun bool   `json:"dry_run"`
}

// SubmitRowRequest is the body of POST /api/rows. Without Save the row is only
// repaired.
type SubmitRowRequest struct {
	Row    string `json:"row" validate:"required"`
	Save   bool   `json:"save"`
	DryRun bool   `json:"dry_run"`
}

// ParseRequest is the body of POST /api/parse
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "invalid JSON", goerr.T(errTagBadRequest))
	}
	if err := validate.Struct(v); err != nil {
		return goerr.Wrap(err, "validation error", goerr.T(errTagBadRequest))
	}
	return nil
}
