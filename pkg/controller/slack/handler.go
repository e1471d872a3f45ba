package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/usecase"
	"github.com/secmon-lab/intake/pkg/utils/async"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// Handler handles the Slack Events API endpoint
type Handler struct {
	signingSecret string
	eventHandler  *EventHandler
}

// NewHandler creates a new Slack handler
func NewHandler(ctx context.Context, signingSecret string, uc usecase.IntakeUseCase, slackClient interfaces.SlackClient) *Handler {
	return &Handler{
		signingSecret: signingSecret,
		eventHandler:  NewEventHandler(ctx, uc, slackClient),
	}
}

// HandleEvent handles a single Slack event
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to read request body", "error", err)
		h.writeError(w, ctx, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.verifySlackSignature(r, body); err != nil {
		ctxlog.From(ctx).Warn("Invalid Slack signature", "error", err)
		h.writeError(w, ctx, goerr.Wrap(err, "invalid signature"), http.StatusUnauthorized)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(body, slackevents.OptionNoVerifyToken())
	if err != nil {
		ctxlog.From(ctx).Error("Failed to parse Slack event", "error", err)
		h.writeError(w, ctx, goerr.Wrap(err, "failed to parse event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var response *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &response); err != nil {
			ctxlog.From(ctx).Error("Failed to parse challenge", "error", err)
			h.writeError(w, ctx, goerr.Wrap(err, "failed to parse challenge"), http.StatusBadRequest)
			return
		}

		ctxlog.From(ctx).Info("Responding to Slack URL verification challenge")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(response.Challenge)); err != nil {
			ctxlog.From(ctx).Error("Failed to write challenge response", "error", err)
		}

	case slackevents.CallbackEvent:
		// Slack retries unless it gets 200 within 3 seconds
		w.WriteHeader(http.StatusOK)
		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.eventHandler.HandleEvent(ctx, &eventsAPIEvent)
		})

	default:
		ctxlog.From(ctx).Warn("Unknown Slack event type", "type", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}

// verifySlackSignature checks the X-Slack-Signature header against the signing secret
func (h *Handler) verifySlackSignature(r *http.Request, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		return goerr.Wrap(err, "failed to create secrets verifier")
	}
	if _, err := verifier.Write(body); err != nil {
		return goerr.Wrap(err, "failed to hash request body")
	}
	if err := verifier.Ensure(); err != nil {
		return goerr.Wrap(err, "signature mismatch")
	}
	return nil
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, ctx context.Context, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		ctxlog.From(ctx).Error("Failed to encode error response", "error", err)
	}
}
