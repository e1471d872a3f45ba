package slack_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/controller/slack"
	"github.com/secmon-lab/intake/pkg/domain/interfaces/mocks"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/repository"
	"github.com/secmon-lab/intake/pkg/service/extract"
	"github.com/secmon-lab/intake/pkg/service/repair"
	"github.com/secmon-lab/intake/pkg/usecase"
	slackgo "github.com/slack-go/slack"
)

const signingSecret = "test-secret"

func testContext() context.Context {
	return ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func newIntake(t *testing.T, repo *repository.Memory) *usecase.Intake {
	t.Helper()

	loc, err := time.LoadLocation("America/La_Paz")
	gt.NoError(t, err)
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	vocab, err := model.DefaultVocabulary()
	gt.NoError(t, err)
	x, err := extract.New(vocab, extract.WithLocation(loc), extract.WithClock(clock))
	gt.NoError(t, err)

	return usecase.NewIntake(x, repair.New(x, model.DefaultPolicy()), repo, usecase.WithClock(clock))
}

// replies collects the text of every message posted through the mock
func newSlackMock() (*mocks.SlackClientMock, chan string) {
	replies := make(chan string, 10)
	return &mocks.SlackClientMock{
		PostMessageContextFunc: func(ctx context.Context, channelID string, options ...slackgo.MsgOption) (string, string, error) {
			_, values, err := slackgo.UnsafeApplyMsgOptions("token", channelID, "https://slack.com/api/", options...)
			if err != nil {
				return "", "", err
			}
			replies <- values.Get("text")
			return channelID, "1700000000.000200", nil
		},
	}, replies
}

func signedRequest(t *testing.T, body string, secret string, ts time.Time) *http.Request {
	t.Helper()

	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, body)))
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewBufferString(body))
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req.WithContext(testContext())
}

func TestSlackHandlerChallenge(t *testing.T) {
	client, _ := newSlackMock()
	handler := slack.NewHandler(testContext(), signingSecret, newIntake(t, repository.NewMemory()), client)

	body := `{"type":"url_verification","token":"x","challenge":"challenge-value"}`
	w := httptest.NewRecorder()
	handler.HandleEvent(w, signedRequest(t, body, signingSecret, time.Now()))

	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, w.Body.String(), "challenge-value")
}

func TestSlackHandlerRejectsBadSignature(t *testing.T) {
	client, _ := newSlackMock()
	handler := slack.NewHandler(testContext(), signingSecret, newIntake(t, repository.NewMemory()), client)

	body := `{"type":"url_verification","token":"x","challenge":"c"}`

	t.Run("wrong secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleEvent(w, signedRequest(t, body, "other-secret", time.Now()))
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleEvent(w, signedRequest(t, body, signingSecret, time.Now().Add(-10*time.Minute)))
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})

	t.Run("no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.HandleEvent(w, req)
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})
}

func TestSlackHandlerMentionIsSubmitted(t *testing.T) {
	repo := repository.NewMemory()
	client, replies := newSlackMock()
	handler := slack.NewHandler(testContext(), signingSecret, newIntake(t, repo), client)

	body := `{"type":"event_callback","team_id":"T1","event":{"type":"app_mention","user":"U1",` +
		`"text":"<@UBOT> A las 09:15 se cayó la VPN en La Paz","ts":"1700000000.000100","channel":"C1"}}`

	w := httptest.NewRecorder()
	handler.HandleEvent(w, signedRequest(t, body, signingSecret, time.Now()))
	gt.Equal(t, w.Code, http.StatusOK)

	select {
	case text := <-replies:
		gt.S(t, text).Contains("Incidente registrado: *INC-07-03-001*")
	case <-time.After(2 * time.Second):
		t.Fatal("no reply posted")
	}
	gt.Equal(t, len(repo.Entries()), 1)
}
