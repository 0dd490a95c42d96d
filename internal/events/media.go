// internal/events/media.go
package events

// Event type constants
const (
	EventMediaStatusChanged   = "media.status.changed"
	EventMediaDemoted         = "media.demoted"
	EventSeasonDemoted        = "season.demoted"
	EventRequestCreated       = "request.created"
	EventRequestStatusChanged = "request.status.changed"
	EventRequestRemoved       = "request.removed"
	EventSubmissionSucceeded  = "submission.succeeded"
	EventSubmissionFailed     = "submission.failed"
	EventJobStarted           = "job.started"
	EventJobFinished          = "job.finished"
	EventNotification         = "notification"
)

// MediaStatusChanged is emitted when a tier status of a media row changes
// outside of a demotion (request cascade, scanner promotion).
type MediaStatusChanged struct {
	BaseEvent
	MediaID   int64  `json:"media_id"`
	Is4K      bool   `json:"is_4k"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason,omitempty"`
}

// MediaDemoted is emitted by the availability sync when a media row loses
// one tier ("tier") or both ("media").
type MediaDemoted struct {
	BaseEvent
	MediaID         int64  `json:"media_id"`
	Kind            string `json:"kind"`
	Is4K            bool   `json:"is_4k"`
	RequestsRemoved int    `json:"requests_removed"`
}

// SeasonDemoted is emitted when a single season fails re-verification.
type SeasonDemoted struct {
	BaseEvent
	MediaID      int64 `json:"media_id"`
	SeasonNumber int   `json:"season_number"`
	Is4K         bool  `json:"is_4k"`
}
