package slack_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/controller/slack"
	"github.com/secmon-lab/intake/pkg/repository"
	"github.com/slack-go/slack/slackevents"
)

func mentionEvent(text string) *slackevents.EventsAPIEvent {
	return &slackevents.EventsAPIEvent{
		Type: slackevents.CallbackEvent,
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Type: string(slackevents.AppMention),
			Data: &slackevents.AppMentionEvent{
				Type:      string(slackevents.AppMention),
				User:      "U1",
				Text:      text,
				TimeStamp: "1700000000.000100",
				Channel:   "C1",
			},
		},
	}
}

func TestEventHandlerAppMention(t *testing.T) {
	ctx := testContext()

	t.Run("saved report", func(t *testing.T) {
		repo := repository.NewMemory()
		client, replies := newSlackMock()
		h := slack.NewEventHandler(ctx, newIntake(t, repo), client)

		gt.NoError(t, h.HandleEvent(ctx, mentionEvent("<@UBOT|intake> Caída del firewall en Cochabamba a las 08:00")))
		gt.Equal(t, len(repo.Entries()), 1)

		text := <-replies
		gt.S(t, text).Contains("INC-07-03-001")
		gt.S(t, text).Contains("Sistema: Firewall.")

		calls := client.PostMessageContextCalls()
		gt.Equal(t, len(calls), 1)
		gt.Equal(t, calls[0].ChannelID, "C1")
	})

	t.Run("missing fields", func(t *testing.T) {
		repo := repository.NewMemory()
		client, replies := newSlackMock()
		h := slack.NewEventHandler(ctx, newIntake(t, repo), client)

		gt.NoError(t, h.HandleEvent(ctx, mentionEvent("<@UBOT> se reportó un problema")))
		gt.Equal(t, len(repo.Entries()), 0)
		gt.S(t, <-replies).Contains("missing system, missing location")
	})

	t.Run("mention without text", func(t *testing.T) {
		client, replies := newSlackMock()
		h := slack.NewEventHandler(ctx, newIntake(t, repository.NewMemory()), client)

		gt.NoError(t, h.HandleEvent(ctx, mentionEvent("<@UBOT>  ")))
		gt.S(t, <-replies).Contains("Envíame el reporte")
	})

	t.Run("bot mentions are ignored", func(t *testing.T) {
		client, _ := newSlackMock()
		h := slack.NewEventHandler(ctx, newIntake(t, repository.NewMemory()), client)

		ev := mentionEvent("<@UBOT> Caída de VPN en La Paz")
		ev.InnerEvent.Data.(*slackevents.AppMentionEvent).BotID = "B1"
		gt.NoError(t, h.HandleEvent(ctx, ev))
		gt.Equal(t, len(client.PostMessageContextCalls()), 0)
	})

	t.Run("other events are ignored", func(t *testing.T) {
		client, _ := newSlackMock()
		h := slack.NewEventHandler(ctx, newIntake(t, repository.NewMemory()), client)

		ev := &slackevents.EventsAPIEvent{
			Type:       slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{Type: "reaction_added", Data: &slackevents.ReactionAddedEvent{}},
		}
		gt.NoError(t, h.HandleEvent(context.Background(), ev))
		gt.Error(t, h.HandleEvent(ctx, nil))
	})
}
