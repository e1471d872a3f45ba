package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/secmon-lab/intake/pkg/service/extract"
	"github.com/secmon-lab/intake/pkg/service/repair"
	"github.com/urfave/cli/v3"
)

// Extraction holds the settings of the heuristic extractor and the repair policy
type Extraction struct {
	Timezone   string
	Vocabulary string
	Required   []string
}

// Flags returns CLI flags for Extraction configuration
func (e *Extraction) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "IANA timezone of the reports",
			Category:    "Extraction",
			Value:       extract.DefaultTimezone,
			Sources:     cli.EnvVars("INTAKE_TIMEZONE"),
			Destination: &e.Timezone,
		},
		&cli.StringFlag{
			Name:        "vocabulary",
			Usage:       "YAML keyword tables replacing the built-in vocabulary",
			Category:    "Extraction",
			Sources:     cli.EnvVars("INTAKE_VOCABULARY"),
			Destination: &e.Vocabulary,
		},
		&cli.StringSliceFlag{
			Name:        "required",
			Usage:       "Columns that must be filled before a record is saved",
			Category:    "Extraction",
			Value:       []string{types.ColumnSystem.String(), types.ColumnLocation.String()},
			Sources:     cli.EnvVars("INTAKE_REQUIRED"),
			Destination: &e.Required,
		},
	}
}

// Policy returns the default policy with the configured required columns
func (e *Extraction) Policy() (model.Policy, error) {
	policy := model.DefaultPolicy()
	if len(e.Required) == 0 {
		return policy, nil
	}

	required := make([]types.Column, 0, len(e.Required))
	for _, name := range e.Required {
		c, err := types.ParseColumn(name)
		if err != nil {
			return model.Policy{}, goerr.Wrap(err, "invalid required column", goerr.V("column", name))
		}
		if c.IsReserved() || c == types.ColumnCode {
			return model.Policy{}, goerr.New("column cannot be required", goerr.V("column", name))
		}
		required = append(required, c)
	}
	policy.Required = required
	return policy, nil
}

// Configure builds the extractor and the repairer
func (e *Extraction) Configure() (*extract.Extractor, *repair.Repairer, error) {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "invalid timezone", goerr.V("timezone", e.Timezone))
	}

	vocab, err := e.loadVocabulary()
	if err != nil {
		return nil, nil, err
	}

	policy, err := e.Policy()
	if err != nil {
		return nil, nil, err
	}

	x, err := extract.New(vocab, extract.WithLocation(loc))
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to build extractor")
	}
	return x, repair.New(x, policy), nil
}

// Vocab returns the configured vocabulary, the built-in one when no file is set
func (e *Extraction) Vocab() (*model.Vocabulary, error) {
	return e.loadVocabulary()
}

func (e *Extraction) loadVocabulary() (*model.Vocabulary, error) {
	if e.Vocabulary == "" {
		return model.DefaultVocabulary()
	}

	data, err := os.ReadFile(e.Vocabulary)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read vocabulary file", goerr.V("path", e.Vocabulary))
	}
	vocab, err := model.ParseVocabulary(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load vocabulary", goerr.V("path", e.Vocabulary))
	}
	return vocab, nil
}

// LogValue returns structured log value
func (e Extraction) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("timezone", e.Timezone),
		slog.String("vocabulary", e.Vocabulary),
		slog.Any("required", e.Required),
	)
}
