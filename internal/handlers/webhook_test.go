// internal/handlers/webhook_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/events"
)

func testNotification() *events.Notification {
	reqID, userID := int64(7), int64(3)
	return &events.Notification{
		BaseEvent:     events.NewBaseEvent(events.EventNotification, events.EntityMedia, 42),
		Kind:          events.NotifyMediaAvailable,
		Subject:       "Media Available",
		MediaID:       42,
		MediaType:     "movie",
		TMDBID:        550,
		RequestID:     &reqID,
		RequestedByID: &userID,
		NotifyAdmin:   true,
	}
}

func TestWebhook_Deliver(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := NewWebhookHandler(nil, WebhookConfig{URL: srv.URL}, nil)
	require.NoError(t, h.deliver(context.Background(), testNotification()))

	assert.Equal(t, events.NotifyMediaAvailable, got.NotificationType)
	assert.Equal(t, "Media Available", got.Subject)
	assert.Equal(t, int64(550), got.Media.TMDBID)
	require.NotNil(t, got.Request)
	assert.Equal(t, int64(7), got.Request.ID)
	assert.True(t, got.NotifyAdmin)
}

func TestWebhook_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := NewWebhookHandler(nil, WebhookConfig{URL: srv.URL, Retries: 3, RetryInterval: time.Millisecond}, nil)
	require.NoError(t, h.deliver(context.Background(), testNotification()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhook_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h := NewWebhookHandler(nil, WebhookConfig{URL: srv.URL, Retries: 5, RetryInterval: time.Millisecond}, nil)
	err := h.deliver(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhook_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewWebhookHandler(nil, WebhookConfig{URL: srv.URL, Retries: 2, RetryInterval: time.Millisecond}, nil)
	require.Error(t, h.deliver(context.Background(), testNotification()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhook_StartDeliversBusNotifications(t *testing.T) {
	received := make(chan webhookPayload, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		received <- p
	}))
	defer srv.Close()

	bus := events.NewBus(nil, nil)
	defer bus.Close()
	h := NewWebhookHandler(bus, WebhookConfig{URL: srv.URL}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	// Subscription happens inside Start.
	require.Eventually(t, func() bool {
		bus.Notify(ctx, events.Notification{Kind: events.NotifyMediaDeclined, MediaID: 9, TMDBID: 603})
		select {
		case p := <-received:
			assert.Equal(t, events.NotifyMediaDeclined, p.NotificationType)
			assert.Equal(t, "Media Declined", p.Subject)
			assert.False(t, p.NotifyAdmin)
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
