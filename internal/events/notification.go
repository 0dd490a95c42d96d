// internal/events/notification.go
package events

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotificationKind names what happened to a request or its media.
type NotificationKind string

const (
	NotifyMediaPending       NotificationKind = "MEDIA_PENDING"
	NotifyMediaApproved      NotificationKind = "MEDIA_APPROVED"
	NotifyMediaAutoApproved  NotificationKind = "MEDIA_AUTO_APPROVED"
	NotifyMediaAutoRequested NotificationKind = "MEDIA_AUTO_REQUESTED"
	NotifyMediaDeclined      NotificationKind = "MEDIA_DECLINED"
	NotifyMediaFailed        NotificationKind = "MEDIA_FAILED"
	NotifyMediaAvailable     NotificationKind = "MEDIA_AVAILABLE"
)

// NotifiesAdmin reports whether a kind is addressed to administrators.
// Approvals, declines and auto requests go to the requesting user only.
func (k NotificationKind) NotifiesAdmin() bool {
	switch k {
	case NotifyMediaApproved, NotifyMediaDeclined, NotifyMediaAutoRequested:
		return false
	}
	return true
}

var subjectCaser = cases.Title(language.English)

// Subject renders a short human readable title, e.g. "Media Auto Approved (4K)".
func (k NotificationKind) Subject(is4k bool) string {
	s := subjectCaser.String(strings.ToLower(strings.ReplaceAll(string(k), "_", " ")))
	if is4k {
		s += " (4K)"
	}
	return s
}

// Notification carries the media, the request and the actor of a state change.
// Template rendering and delivery are left to subscribers.
type Notification struct {
	BaseEvent
	Kind          NotificationKind `json:"kind"`
	Subject       string           `json:"subject"`
	MediaID       int64            `json:"media_id"`
	MediaType     string           `json:"media_type"`
	TMDBID        int64            `json:"tmdb_id"`
	Is4K          bool             `json:"is_4k"`
	RequestID     *int64           `json:"request_id,omitempty"`
	RequestedByID *int64           `json:"requested_by_id,omitempty"`
	ActorID       *int64           `json:"actor_id,omitempty"`
	NotifyAdmin   bool             `json:"notify_admin"`
}

// Notify publishes n on the bus. Missing base fields, subject and admin
// addressing are filled in from the kind.
func (b *Bus) Notify(ctx context.Context, n Notification) {
	if n.Type == "" {
		n.BaseEvent = BaseEvent{Type: EventNotification, Entity: EntityMedia, ID: n.MediaID, Timestamp: time.Now()}
	}
	if n.Subject == "" {
		n.Subject = n.Kind.Subject(n.Is4K)
	}
	n.NotifyAdmin = n.Kind.NotifiesAdmin()
	_ = b.Publish(ctx, &n)
}
