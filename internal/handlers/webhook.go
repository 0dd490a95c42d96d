package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vmunix/mediarr/internal/events"
)

// WebhookConfig configures the webhook handler.
type WebhookConfig struct {
	URL     string
	Retries uint64
	Timeout time.Duration
	// RetryInterval is the first backoff delay. Defaults to 500ms.
	RetryInterval time.Duration
}

// webhookPayload is the JSON body posted for every notification.
type webhookPayload struct {
	NotificationType events.NotificationKind `json:"notification_type"`
	Subject          string                  `json:"subject"`
	Timestamp        time.Time               `json:"timestamp"`
	Media            webhookMedia            `json:"media"`
	Request          *webhookRequest         `json:"request,omitempty"`
	ActorID          *int64                  `json:"actor_id,omitempty"`
	NotifyAdmin      bool                    `json:"notify_admin"`
}

type webhookMedia struct {
	ID     int64  `json:"id"`
	Type   string `json:"media_type"`
	TMDBID int64  `json:"tmdb_id"`
	Is4K   bool   `json:"is_4k"`
}

type webhookRequest struct {
	ID            int64  `json:"id"`
	RequestedByID *int64 `json:"requested_by_id,omitempty"`
}

// WebhookHandler posts every notification to a webhook URL, retrying
// transient failures with exponential backoff.
type WebhookHandler struct {
	*BaseHandler
	config WebhookConfig
	client *http.Client
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(bus *events.Bus, config WebhookConfig, logger *slog.Logger) *WebhookHandler {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		BaseHandler: NewBaseHandler(bus, logger.With("component", "webhook")),
		config:      config,
		client:      &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the handler name.
func (h *WebhookHandler) Name() string {
	return "webhook"
}

// Start delivers notifications until ctx is done.
func (h *WebhookHandler) Start(ctx context.Context) error {
	return h.Consume(ctx, events.EventNotification, 100, func(ctx context.Context, e events.Event) {
		n, ok := e.(*events.Notification)
		if !ok {
			return
		}
		if err := h.deliver(ctx, n); err != nil {
			h.Logger().Error("webhook delivery failed",
				"kind", n.Kind,
				"media_id", n.MediaID,
				"error", err)
		}
	})
}

func payloadFor(n *events.Notification) webhookPayload {
	p := webhookPayload{
		NotificationType: n.Kind,
		Subject:          n.Subject,
		Timestamp:        n.Timestamp,
		Media: webhookMedia{
			ID:     n.MediaID,
			Type:   n.MediaType,
			TMDBID: n.TMDBID,
			Is4K:   n.Is4K,
		},
		ActorID:     n.ActorID,
		NotifyAdmin: n.NotifyAdmin,
	}
	if n.RequestID != nil {
		p.Request = &webhookRequest{ID: *n.RequestID, RequestedByID: n.RequestedByID}
	}
	return p
}

// deliver posts one notification. Client errors (4xx) are not retried.
func (h *WebhookHandler) deliver(ctx context.Context, n *events.Notification) error {
	body, err := json.Marshal(payloadFor(n))
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.URL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "mediarr")
		resp, err := h.client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("webhook rejected: %s", resp.Status))
		}
		return fmt.Errorf("webhook status: %s", resp.Status)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(h.policy(), h.config.Retries), ctx)
	err = backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		h.Logger().Warn("webhook delivery failed, retrying", "kind", n.Kind, "error", err, "wait", wait)
	})
	if err != nil {
		return err
	}
	h.Logger().Debug("webhook delivered", "kind", n.Kind, "media_id", n.MediaID)
	return nil
}

func (h *WebhookHandler) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.config.RetryInterval
	b.MaxElapsedTime = 2 * time.Minute
	return b
}
