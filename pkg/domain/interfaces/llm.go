package interfaces

//go:generate moq -out mocks/prefiller_mock.go -pkg mocks . Prefiller

import (
	"context"

	"github.com/secmon-lab/intake/pkg/domain/model"
)

// Prefiller asks a language model for a draft record. The draft may have values in
// the wrong columns; callers run it through the repair pass.
type Prefiller interface {
	Prefill(ctx context.Context, text string) (model.Record, error)
}
