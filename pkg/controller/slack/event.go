package slack

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/usecase"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// mentionPattern matches user and bot mentions such as "<@U123>" or "<@U123|intake>"
var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+(?:\|[^>]*)?>`)

const usageMessage = "Envíame el reporte del incidente en el mismo mensaje, por ejemplo: " +
	"`@intake A las 09:15 se cayó la VPN en La Paz, se reinició a las 09:40`"

// EventHandler turns app mentions into incident submissions
type EventHandler struct {
	uc          usecase.IntakeUseCase
	slackClient interfaces.SlackClient
}

// NewEventHandler creates a new event handler
func NewEventHandler(ctx context.Context, uc usecase.IntakeUseCase, slackClient interfaces.SlackClient) *EventHandler {
	return &EventHandler{
		uc:          uc,
		slackClient: slackClient,
	}
}

// HandleEvent handles a Slack event
func (h *EventHandler) HandleEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	if event == nil {
		return goerr.New("event is nil")
	}

	ctxlog.From(ctx).Debug("Handling Slack event",
		"type", event.Type,
		"innerEvent", event.InnerEvent.Type,
	)

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		return h.handleAppMentionEvent(ctx, ev)

	default:
		ctxlog.From(ctx).Debug("Unhandled event type",
			"type", event.InnerEvent.Type,
		)
		return nil
	}
}

func (h *EventHandler) handleAppMentionEvent(ctx context.Context, event *slackevents.AppMentionEvent) error {
	logger := ctxlog.From(ctx)

	// Skip bot messages to prevent loops
	if event.BotID != "" {
		logger.Debug("Skipping bot mention", "botID", event.BotID)
		return nil
	}

	threadTS := event.ThreadTimeStamp
	if threadTS == "" {
		threadTS = event.TimeStamp
	}

	text := strings.TrimSpace(mentionPattern.ReplaceAllString(event.Text, ""))
	if text == "" {
		return h.reply(ctx, event.Channel, threadTS, usageMessage)
	}

	logger.Info("Submitting report from Slack",
		"user", event.User,
		"channel", event.Channel,
		"ts", event.TimeStamp,
	)

	outcome, err := h.uc.Submit(ctx, text, usecase.SubmitOptions{})
	if err != nil {
		var missing *model.MissingFieldsError
		if errors.As(err, &missing) {
			return h.reply(ctx, event.Channel, threadTS,
				fmt.Sprintf("No se registró el incidente: %s. Agrega esos datos y vuelve a enviarlo.", missing.Error()))
		}

		logger.Error("Failed to submit report from Slack", "error", err, "channel", event.Channel)
		if replyErr := h.reply(ctx, event.Channel, threadTS, "No se pudo registrar el incidente por un error interno."); replyErr != nil {
			logger.Error("Failed to post error reply", "error", replyErr)
		}
		return err
	}

	return h.reply(ctx, event.Channel, threadTS, formatSaved(outcome))
}

func formatSaved(outcome *model.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Incidente registrado: *%s*\n%s", outcome.Entry.Code(), outcome.Summary)
	for _, a := range outcome.Advisories {
		fmt.Fprintf(&b, "\n• %s", a.Message)
	}
	return b.String()
}

func (h *EventHandler) reply(ctx context.Context, channel, threadTS, message string) error {
	_, _, err := h.slackClient.PostMessageContext(ctx, channel,
		slack.MsgOptionText(message, false),
		slack.MsgOptionTS(threadTS),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post reply",
			goerr.V("channel", channel),
			goerr.V("thread_ts", threadTS))
	}
	return nil
}
