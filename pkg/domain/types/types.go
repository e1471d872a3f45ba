package types

import (
	"github.com/google/uuid"
)

// SubmissionID identifies a single text submission
type SubmissionID string

// String returns the string representation
func (id SubmissionID) String() string {
	return string(id)
}

// NewSubmissionID creates a new SubmissionID using UUID v7
func NewSubmissionID() (SubmissionID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return SubmissionID(id.String()), nil
}

// Classification is one of the fixed incident classification labels
type Classification string

const (
	ClassificationMalware            Classification = "Malware"
	ClassificationPhishing           Classification = "Phishing"
	ClassificationUnauthorizedAccess Classification = "Unauthorized Access"
	ClassificationServiceOutage      Classification = "Service Outage"
	ClassificationDataLeak           Classification = "Data Leak"
	ClassificationMultiComponent     Classification = "Multi-component"
	ClassificationOther              Classification = "Other"
)

// Classifications lists every valid classification label
var Classifications = []Classification{
	ClassificationMalware,
	ClassificationPhishing,
	ClassificationUnauthorizedAccess,
	ClassificationServiceOutage,
	ClassificationDataLeak,
	ClassificationMultiComponent,
	ClassificationOther,
}

// String returns the string representation
func (c Classification) String() string {
	return string(c)
}

// IsValid checks if the classification is one of the fixed labels
func (c Classification) IsValid() bool {
	for _, v := range Classifications {
		if v == c {
			return true
		}
	}
	return false
}

// Status represents the status column of a record
type Status string

const (
	StatusOpen               Status = "Open"
	StatusUnderInvestigation Status = "Under investigation"
	StatusInProgress         Status = "In progress"
	StatusClosed             Status = "Closed"
)

// Statuses lists every valid status label
var Statuses = []Status{
	StatusOpen,
	StatusUnderInvestigation,
	StatusInProgress,
	StatusClosed,
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// EventType distinguishes events from incidents
type EventType string

const (
	EventTypeEvent    EventType = "Event"
	EventTypeIncident EventType = "Incident"
)

// String returns the string representation
func (e EventType) String() string {
	return string(e)
}
