package interfaces

//go:generate moq -out mocks/notifier_mock.go -pkg mocks . Notifier SlackClient

import (
	"context"

	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier announces a saved entry. Failures never affect the submission.
type Notifier interface {
	Notify(ctx context.Context, entry *model.Entry) error
}

// SlackClient is the subset of *slack.Client used for notifications
type SlackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}
