package config_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/cli/config"
)

func TestLoggerConfigure(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := config.Logger{}
		logger, err := cfg.Configure()
		gt.NoError(t, err)
		gt.True(t, logger != nil)
	})

	t.Run("debug on stdout", func(t *testing.T) {
		cfg := config.Logger{Level: "debug", Format: "json", Output: "stdout"}
		logger, err := cfg.Configure()
		gt.NoError(t, err)
		gt.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	tests := []struct {
		name string
		cfg  config.Logger
	}{
		{"bad level", config.Logger{Level: "verbose"}},
		{"bad format", config.Logger{Format: "xml"}},
		{"bad output", config.Logger{Output: "/var/log/intake.log"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Configure()
			gt.Error(t, err)
		})
	}
}
