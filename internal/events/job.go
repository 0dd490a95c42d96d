// internal/events/job.go
package events

// JobStarted is emitted when a scheduled or manual job begins.
type JobStarted struct {
	BaseEvent
	JobID   string `json:"job_id"`
	Manual  bool   `json:"manual,omitempty"`
	Session string `json:"session,omitempty"`
}

// JobFinished is emitted when a job returns.
type JobFinished struct {
	BaseEvent
	JobID      string `json:"job_id"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}
