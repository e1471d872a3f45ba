package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu      sync.RWMutex
	entries []*model.Entry
	byID    map[types.SubmissionID]*model.Entry
}

// NewMemory creates a new memory repository
func NewMemory() *Memory {
	return &Memory{
		byID: make(map[types.SubmissionID]*model.Entry),
	}
}

// ListCodes returns the codes of every stored entry in insertion order
func (m *Memory) ListCodes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	codes := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		codes = append(codes, e.Code())
	}
	return codes, nil
}

// AppendRecord stores a copy of the entry
func (m *Memory) AppendRecord(ctx context.Context, entry *model.Entry) error {
	if entry == nil {
		return goerr.New("entry is nil")
	}
	if entry.ID == "" {
		return goerr.New("entry ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[entry.ID]; exists {
		return goerr.New("record already exists", goerr.V("id", entry.ID))
	}

	stored := *entry
	m.entries = append(m.entries, &stored)
	m.byID[stored.ID] = &stored
	return nil
}

// GetRecord retrieves an entry by submission ID
func (m *Memory) GetRecord(ctx context.Context, id types.SubmissionID) (*model.Entry, error) {
	if id == "" {
		return nil, goerr.New("entry ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.byID[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrRecordNotFound, "failed to get record", goerr.V("id", id))
	}
	copied := *e
	return &copied, nil
}

// Entries returns copies of every stored entry in insertion order
func (m *Memory) Entries() []model.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out
}

// Close is a no-op for memory repository
func (m *Memory) Close() error {
	return nil
}

var _ interfaces.Repository = (*Memory)(nil)
var _ interfaces.RecordReader = (*Memory)(nil)
