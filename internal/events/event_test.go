package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventMediaDemoted, EntityMedia, 123)

	assert.Equal(t, EventMediaDemoted, e.EventType())
	assert.Equal(t, EntityMedia, e.EntityType())
	assert.Equal(t, int64(123), e.EntityID())
	assert.WithinDuration(t, time.Now(), e.OccurredAt(), time.Minute)
}

func TestNewBaseEventAt(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := NewBaseEventAt(EventSeasonDemoted, EntitySeason, 9, at)
	assert.Equal(t, at, e.OccurredAt())
}

func TestBaseEvent_PayloadFields(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b, err := json.Marshal(&MediaDemoted{
		BaseEvent: NewBaseEventAt(EventMediaDemoted, EntityMedia, 7, at),
		MediaID:   7,
		Kind:      "tier",
		Is4K:      true,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, EventMediaDemoted, got["type"])
	assert.Equal(t, EntityMedia, got["entity_type"])
	assert.Equal(t, float64(7), got["entity_id"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got["occurred_at"])
	assert.Equal(t, "tier", got["kind"])
}
