// internal/events/request.go
package events

// RequestCreated is emitted after a request row and its season rows are stored.
type RequestCreated struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	MediaID   int64  `json:"media_id"`
	MediaType string `json:"media_type"`
	Is4K      bool   `json:"is_4k"`
	Status    string `json:"status"`
	Seasons   []int  `json:"seasons,omitempty"`
	UserID    int64  `json:"user_id"`
}

// RequestStatusChanged is emitted on approve, decline and completion.
type RequestStatusChanged struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ActorID   *int64 `json:"actor_id,omitempty"`
}

// Reasons recorded on RequestRemoved events.
const (
	RemovedByUser         = "user"
	RemovedWithUser       = "user_deleted"
	RemovedByAvailability = "availability_sync"
)

// RequestRemoved is emitted when a request is deleted by a user, a user
// cascade, or the availability sync.
type RequestRemoved struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	MediaID   int64  `json:"media_id"`
	Is4K      bool   `json:"is_4k"`
	Reason    string `json:"reason"`
}

// SubmissionSucceeded is emitted when a download manager accepted a title,
// or already had it.
type SubmissionSucceeded struct {
	BaseEvent
	RequestID         int64  `json:"request_id"`
	MediaID           int64  `json:"media_id"`
	Service           string `json:"service"`
	ServiceID         int64  `json:"service_id"`
	ExternalServiceID int64  `json:"external_service_id"`
	AlreadyAvailable  bool   `json:"already_available,omitempty"`
}

// SubmissionFailed is emitted when a download manager rejected a title.
type SubmissionFailed struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	MediaID   int64  `json:"media_id"`
	Service   string `json:"service"`
	Reason    string `json:"reason"`
}
