package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/cli/config"
	controller "github.com/secmon-lab/intake/pkg/controller/http"
	slackCtrl "github.com/secmon-lab/intake/pkg/controller/slack"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		pipelineCfg pipelineConfig
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: joinFlags(serverCfg.Flags(), pipelineCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting intake server",
				slog.Any("server", serverCfg),
				slog.Any("pipeline", pipelineCfg),
			)

			uc, repo, err := pipelineCfg.build(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			var serverOpts []controller.ServerOption
			if pipelineCfg.slack.IsEventsConfigured() {
				logger.Info("Serving Slack events", slog.String("path", "/hooks/slack/event"))
				handler := slackCtrl.NewHandler(ctx, pipelineCfg.slack.SigningSecret, uc, pipelineCfg.slack.Client())
				serverOpts = append(serverOpts, controller.WithSlackHandler(handler))
			}

			server := controller.NewServer(ctx, serverCfg.Addr, uc, serverOpts...)

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
