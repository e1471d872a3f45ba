package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Storage selects the record backend: Sheets when configured, else Firestore,
// else an in-memory store.
type Storage struct {
	Sheets    Sheets
	Firestore Firestore
}

// Flags returns CLI flags for every storage backend
func (s *Storage) Flags() []cli.Flag {
	return append(s.Sheets.Flags(), s.Firestore.Flags()...)
}

// Configure creates the selected repository
func (s *Storage) Configure(ctx context.Context) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	switch {
	case s.Sheets.IsConfigured():
		if s.Firestore.IsConfigured() {
			logger.Warn("Both Sheets and Firestore are configured, using Sheets")
		}
		repo, err := s.Sheets.Configure(ctx)
		if err != nil {
			return nil, err
		}
		return repo, nil

	case s.Firestore.IsConfigured():
		repo, err := s.Firestore.Configure(ctx)
		if err != nil {
			return nil, err
		}
		return repo, nil

	default:
		logger.Warn("Using memory database instead of sheets or firestore. The data will be removed when shutting down")
		return repository.NewMemory(), nil
	}
}

// LogValue returns structured log value
func (s Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("sheets", s.Sheets),
		slog.Any("firestore", s.Firestore),
	)
}
