package slack

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier posts each saved entry to a Slack channel
type Notifier struct {
	client    interfaces.SlackClient
	channelID string
}

// NewNotifier creates a new Notifier
func NewNotifier(client interfaces.SlackClient, channelID string) *Notifier {
	return &Notifier{
		client:    client,
		channelID: channelID,
	}
}

// Notify posts the entry. The plain text fallback is the record summary.
func (n *Notifier) Notify(ctx context.Context, entry *model.Entry) error {
	if entry == nil {
		return goerr.New("entry is nil")
	}

	fallback := entry.Code() + " " + entry.Record.Summary()
	_, ts, err := n.client.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(BuildEntryBlocks(entry)...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post entry to Slack",
			goerr.V("channel", n.channelID),
			goerr.V("code", entry.Code()))
	}

	ctxlog.From(ctx).Debug("entry posted to Slack",
		"channel", n.channelID,
		"code", entry.Code(),
		"ts", ts,
	)
	return nil
}

var _ interfaces.Notifier = (*Notifier)(nil)
