package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Decode(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name  string
		raw   RawEvent
		check func(t *testing.T, e Event)
	}{
		{
			name: "tier demotion",
			raw: RawEvent{
				EventType: EventMediaDemoted,
				Payload:   `{"type":"media.demoted","entity_type":"media","entity_id":7,"occurred_at":"2024-01-01T00:00:00Z","media_id":7,"kind":"tier","is_4k":true,"requests_removed":2}`,
			},
			check: func(t *testing.T, e Event) {
				d, ok := e.(*MediaDemoted)
				require.True(t, ok)
				assert.Equal(t, int64(7), d.MediaID)
				assert.Equal(t, "tier", d.Kind)
				assert.True(t, d.Is4K)
				assert.Equal(t, 2, d.RequestsRemoved)
			},
		},
		{
			name: "notification with request",
			raw: RawEvent{
				EventType: EventNotification,
				Payload:   `{"type":"notification","entity_type":"media","entity_id":5,"occurred_at":"2024-01-01T12:00:00Z","kind":"MEDIA_FAILED","subject":"Media Failed","media_id":5,"request_id":9,"notify_admin":true}`,
			},
			check: func(t *testing.T, e Event) {
				n, ok := e.(*Notification)
				require.True(t, ok)
				assert.Equal(t, NotifyMediaFailed, n.Kind)
				require.NotNil(t, n.RequestID)
				assert.Equal(t, int64(9), *n.RequestID)
				assert.True(t, n.NotifyAdmin)
			},
		},
		{
			name: "season demotion",
			raw: RawEvent{
				EventType: EventSeasonDemoted,
				Payload:   `{"type":"season.demoted","entity_type":"season","entity_id":31,"occurred_at":"2024-01-01T00:00:00Z","media_id":4,"season_number":2}`,
			},
			check: func(t *testing.T, e Event) {
				s, ok := e.(*SeasonDemoted)
				require.True(t, ok)
				assert.Equal(t, 2, s.SeasonNumber)
				assert.Equal(t, EntitySeason, s.EntityType())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.Decode(tt.raw)
			require.NoError(t, err)
			tt.check(t, e)
		})
	}
}

func TestRegistry_DecodeErrors(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Decode(RawEvent{ID: 3, EventType: "download.completed", Payload: `{}`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "download.completed"`)

	_, err = r.Decode(RawEvent{ID: 4, EventType: EventRequestCreated, Payload: `{broken`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 4: decode request.created payload")
}

func TestDefaultRegistry_CoversPublishedTypes(t *testing.T) {
	r := DefaultRegistry()

	want := []string{
		EventJobFinished,
		EventJobStarted,
		EventMediaDemoted,
		EventMediaStatusChanged,
		EventNotification,
		EventRequestCreated,
		EventRequestRemoved,
		EventRequestStatusChanged,
		EventSeasonDemoted,
		EventSubmissionFailed,
		EventSubmissionSucceeded,
	}
	assert.ElementsMatch(t, want, r.Types())
	assert.IsIncreasing(t, r.Types())

	for _, typ := range want {
		assert.True(t, r.Known(typ), typ)
	}
	assert.False(t, r.Known("grab.requested"))
}
