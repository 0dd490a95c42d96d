package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vmunix/mediarr/internal/events"
)

// defaultEventWindow bounds GET /events when no since is given.
const defaultEventWindow = 24 * time.Hour

var eventTypes = events.DefaultRegistry()

// listEvents returns events since a point in time, optionally of one type.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	since := time.Now().Add(-defaultEventWindow)
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC3339 timestamp")
			return
		}
		since = t
	}
	typ := r.URL.Query().Get("type")
	if typ != "" && !eventTypes.Known(typ) {
		writeError(w, http.StatusBadRequest, "UNKNOWN_EVENT_TYPE",
			fmt.Sprintf("unknown event type %q (known: %s)", typ, strings.Join(eventTypes.Types(), ", ")))
		return
	}

	evts, err := s.deps.EventLog.Since(since, typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eventsToResponse(evts))
}

// listMediaEvents returns the audit trail of one media row.
func (s *Server) listMediaEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	evts, err := s.deps.EventLog.ForEntity(events.EntityMedia, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eventsToResponse(evts))
}

func eventsToResponse(evts []events.RawEvent) listEventsResponse {
	resp := listEventsResponse{
		Items: make([]EventResponse, len(evts)),
		Total: len(evts),
	}
	for i, e := range evts {
		resp.Items[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		}
		resp.Items[i].Payload = eventPayload(e)
	}
	return resp
}

// eventPayload re-encodes a stored payload through its current event type
// so rows written by older builds come back in today's shape. Payloads that
// no longer decode are passed through if they are still JSON.
func eventPayload(e events.RawEvent) json.RawMessage {
	if typed, err := eventTypes.Decode(e); err == nil {
		if b, err := json.Marshal(typed); err == nil {
			return b
		}
	}
	if json.Valid([]byte(e.Payload)) {
		return json.RawMessage(e.Payload)
	}
	return nil
}
