package cli

import (
	"context"
	"io"

	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/usecase"
)

// Test-only accessors for the parse command internals

func WriteOutcome(out, info io.Writer, format string, outcome *model.Outcome) error {
	return writeOutcome(out, info, format, outcome)
}

func FirstLine(input string) string {
	return firstLine(input)
}

func RunParse(ctx context.Context, uc usecase.IntakeUseCase, text string, row, save, dryRun bool) (*model.Outcome, error) {
	return runParse(ctx, uc, parseConfig{row: row, save: save, dryRun: dryRun}, text)
}
