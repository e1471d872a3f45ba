package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/intake/pkg/cli/config"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/service/llm"
	"github.com/secmon-lab/intake/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// joinFlags combines multiple flag slices into one
func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}

// pipelineConfig gathers the settings shared by every command that runs the pipeline
type pipelineConfig struct {
	extraction config.Extraction
	storage    config.Storage
	gemini     config.Gemini
	slack      config.Slack
}

func (p *pipelineConfig) Flags() []cli.Flag {
	return joinFlags(
		p.extraction.Flags(),
		p.storage.Flags(),
		p.gemini.Flags(),
		p.slack.Flags(),
	)
}

func (p pipelineConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("extraction", p.extraction),
		slog.Any("storage", p.storage),
		slog.Any("gemini", p.gemini),
		slog.Any("slack", p.slack),
	)
}

// build wires the use case. The returned repository must be closed by the caller.
func (p *pipelineConfig) build(ctx context.Context) (*usecase.Intake, interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	x, repairer, err := p.extraction.Configure()
	if err != nil {
		return nil, nil, err
	}

	repo, err := p.storage.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}

	var opts []usecase.IntakeOption
	if client := p.gemini.ConfigureOptional(ctx, logger); client != nil {
		vocab, err := p.extraction.Vocab()
		if err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		opts = append(opts, usecase.WithPrefiller(llm.NewLLMService(client, vocab, x.Location())))
	}
	if notifier := p.slack.ConfigureOptional(logger); notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	return usecase.NewIntake(x, repairer, repo, opts...), repo, nil
}
