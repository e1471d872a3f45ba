package model

import (
	"github.com/secmon-lab/intake/pkg/domain/types"
)

// Policy decides which empty columns get a soft default and which ones fail the submission
type Policy struct {
	Defaults map[types.Column]string
	Required []types.Column
}

// DefaultPolicy returns the canonical policy: event type and classification get
// defaults, system and location are required.
func DefaultPolicy() Policy {
	return Policy{
		Defaults: map[types.Column]string{
			types.ColumnEventType:      types.EventTypeIncident.String(),
			types.ColumnClassification: types.ClassificationOther.String(),
		},
		Required: []types.Column{
			types.ColumnSystem,
			types.ColumnLocation,
		},
	}
}

// Validate checks a record against the required columns
func (p Policy) Validate(rec *Record) error {
	var missing []types.Column
	for _, c := range p.Required {
		if rec.Get(c) == "" {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
