package handler

import (
	"encoding/json"
	"io"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"

	"github.com/aide-ai/content-assistant/internal/model"
	"github.com/aide-ai/content-assistant/internal/service"
	"github.com/aide-ai/content-assistant/pkg/logger"
	"github.com/aide-ai/content-assistant/pkg/metrics"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler handles identity-provider webhook deliveries.
type WebhookHandler struct {
	users    *service.UserService
	verifier *svix.Webhook
	logger   *logger.Logger
}

// NewWebhookHandler creates a new webhook handler. With an empty secret every
// delivery is rejected with a server error.
func NewWebhookHandler(users *service.UserService, secret string, log *logger.Logger) *WebhookHandler {
	var verifier *svix.Webhook
	if secret != "" {
		wh, err := svix.NewWebhook(secret)
		if err != nil {
			log.Error("invalid webhook secret", zap.Error(err))
		} else {
			verifier = wh
		}
	}

	return &WebhookHandler{
		users:    users,
		verifier: verifier,
		logger:   log,
	}
}

// Handle handles POST /webhooks
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		writeError(w, http.StatusInternalServerError, "webhook secret not configured")
		return
	}

	if r.Header.Get("svix-id") == "" ||
		r.Header.Get("svix-timestamp") == "" ||
		r.Header.Get("svix-signature") == "" {
		writeError(w, http.StatusBadRequest, "missing webhook headers")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if err := h.verifier.Verify(body, r.Header); err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		writeError(w, http.StatusBadRequest, "webhook verification failed")
		return
	}

	var evt model.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	if evt.Type == "user.created" {
		if err := h.users.HandleUserCreated(r.Context(), &evt.Data); err != nil {
			h.logger.Error("failed to upsert webhook user", zap.Error(err))
			metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "error").Inc()
			writeError(w, http.StatusInternalServerError, "failed to save user")
			return
		}
		metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "processed").Inc()
		writeJSON(w, http.StatusCreated, map[string]string{"message": "user created"})
		return
	}

	metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "ignored").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "webhook received"})
}
