package usecase

import (
	"context"

	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
)

// IntakeUseCase defines the operations exposed to the HTTP and CLI controllers
type IntakeUseCase interface {
	// Parse interprets free text without assigning a code or persisting
	Parse(ctx context.Context, text string) (*model.Outcome, error)

	// Submit interprets, validates, codes and appends free text
	Submit(ctx context.Context, text string, opts SubmitOptions) (*model.Outcome, error)

	// RepairRow normalizes and repairs a pipe-delimited row without persisting it
	RepairRow(ctx context.Context, line string) (*model.Outcome, error)

	// SubmitRow repairs, validates, codes and appends a pipe-delimited row
	SubmitRow(ctx context.Context, line string, opts SubmitOptions) (*model.Outcome, error)

	// Record looks up a saved entry by submission ID
	Record(ctx context.Context, id types.SubmissionID) (*model.Entry, error)
}

var _ IntakeUseCase = (*Intake)(nil)
