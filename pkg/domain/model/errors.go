package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/types"
)

// Error tags for categorization
var (
	ErrTagValidation = goerr.NewTag("validation")
	ErrTagEmptyInput = goerr.NewTag("empty_input")
)

// Sentinel errors for domain operations
var (
	ErrEmptyText      = goerr.New("incident text is empty", goerr.T(ErrTagEmptyInput))
	ErrRecordNotFound = goerr.New("record not found")
)

// MissingFieldsError reports required columns that are still empty after repair.
// The pipeline halts and no partial record is emitted.
type MissingFieldsError struct {
	Fields []types.Column
}

// Error returns "missing system, missing location" style messages
func (e *MissingFieldsError) Error() string {
	return strings.Join(e.Reasons(), ", ")
}

// Reasons returns one actionable message per missing column
func (e *MissingFieldsError) Reasons() []string {
	reasons := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		reasons = append(reasons, "missing "+f.Label())
	}
	return reasons
}
