package model

import (
	"time"

	"github.com/secmon-lab/intake/pkg/domain/types"
)

// Entry is a validated record ready to be handed to the persistence collaborator
type Entry struct {
	ID         types.SubmissionID
	Record     Record
	ReportedAt time.Time
}

// Code returns the sequence code of the entry
func (e *Entry) Code() string {
	return e.Record.Get(types.ColumnCode)
}

// Outcome is the result of one submission
type Outcome struct {
	Entry      *Entry
	Summary    string
	Advisories []Advisory
	Saved      bool
}
