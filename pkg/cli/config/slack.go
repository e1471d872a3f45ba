package config

import (
	"log/slog"

	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	slackSvc "github.com/secmon-lab/intake/pkg/service/slack"
	"github.com/slack-go/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds Slack notification configuration
type Slack struct {
	OAuthToken    string
	ChannelID     string
	SigningSecret string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack OAuth token used to announce saved records",
			Category:    "Slack",
			Sources:     cli.EnvVars("INTAKE_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID receiving saved records",
			Category:    "Slack",
			Sources:     cli.EnvVars("INTAKE_SLACK_CHANNEL"),
			Destination: &s.ChannelID,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret; enables report submission by mentioning the app",
			Category:    "Slack",
			Sources:     cli.EnvVars("INTAKE_SLACK_SIGNING_SECRET"),
			Destination: &s.SigningSecret,
		},
	}
}

// ConfigureOptional creates a notifier if configured, returns nil if not
func (s *Slack) ConfigureOptional(logger *slog.Logger) interfaces.Notifier {
	if !s.IsConfigured() {
		logger.Info("Slack not configured, saved records will not be announced")
		return nil
	}

	logger.Info("Configuring Slack notifier", slog.String("channel", s.ChannelID))
	return slackSvc.NewNotifier(s.Client(), s.ChannelID)
}

// Client creates a Slack API client, nil without a token
func (s *Slack) Client() *slack.Client {
	if s.OAuthToken == "" {
		return nil
	}
	return slack.New(s.OAuthToken)
}

// IsConfigured checks if Slack notifications are configured
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != "" && s.ChannelID != ""
}

// IsEventsConfigured checks if the Events API endpoint can be served
func (s *Slack) IsEventsConfigured() bool {
	return s.OAuthToken != "" && s.SigningSecret != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.String("channel", s.ChannelID),
		slog.Bool("has_signing_secret", s.SigningSecret != ""),
	)
}
