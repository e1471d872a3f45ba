package interfaces

//go:generate moq -out mocks/repository_mock.go -pkg mocks . Repository

import (
	"context"

	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
)

// Repository is the persistence collaborator. Implementations hold the issued
// codes and the appended records.
type Repository interface {
	// ListCodes returns every code issued so far, read fresh on each call
	ListCodes(ctx context.Context) ([]string, error)

	// AppendRecord persists a validated entry
	AppendRecord(ctx context.Context, entry *model.Entry) error

	// Close closes the repository connection
	Close() error
}

// RecordReader is implemented by backends that can look up a stored entry
type RecordReader interface {
	GetRecord(ctx context.Context, id types.SubmissionID) (*model.Entry, error)
}
