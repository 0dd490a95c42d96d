// Package media holds the status model: media titles, their seasons, and the
// requests that drove their acquisition.
package media

import (
	"time"
)

// Type distinguishes movies from shows.
type Type string

const (
	TypeMovie Type = "movie"
	TypeTV    Type = "tv"
)

// Status is the availability state of a title or season for one quality tier.
type Status string

const (
	StatusUnknown            Status = "unknown"
	StatusPending            Status = "pending"
	StatusProcessing         Status = "processing"
	StatusPartiallyAvailable Status = "partially_available"
	StatusAvailable          Status = "available"
)

// IsAvailable reports whether s is available or partially available.
func (s Status) IsAvailable() bool {
	return s == StatusAvailable || s == StatusPartiallyAvailable
}

// RequestStatus is the approval state of a request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
	// RequestCompleted marks a fulfilled season request, or a request whose
	// seasons are all fulfilled.
	RequestCompleted RequestStatus = "completed"
)

// Tier is a quality tier. Every status is tracked once per tier.
type Tier bool

const (
	Standard Tier = false
	FourK    Tier = true
)

// TierOf converts an is4k flag.
func TierOf(is4k bool) Tier { return Tier(is4k) }

// Is4K reports whether t is the 4K tier.
func (t Tier) Is4K() bool { return bool(t) }

// Other returns the opposite tier.
func (t Tier) Other() Tier { return !t }

func (t Tier) String() string {
	if t {
		return "4k"
	}
	return "standard"
}

// Tiers lists both tiers in a stable order.
var Tiers = []Tier{Standard, FourK}

// TierFields are the per-tier external references of a Media.
type TierFields struct {
	ServiceID           *int64  // download manager instance id
	ExternalServiceID   *int64  // item id inside the download manager
	ExternalServiceSlug *string // item slug inside the download manager
	RatingKey           *string // item id inside the media server
}

// Media is one movie or show, keyed by TMDB id and type.
type Media struct {
	ID               int64
	Type             Type
	TMDBID           int64
	TVDBID           *int64
	IMDBID           *string
	Status           Status
	Status4K         Status
	Standard         TierFields
	FourK            TierFields
	MediaAddedAt     *time.Time
	LastSeasonChange *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StatusFor returns the status for tier t.
func (m *Media) StatusFor(t Tier) Status {
	if t.Is4K() {
		return m.Status4K
	}
	return m.Status
}

// SetStatus sets the status for tier t.
func (m *Media) SetStatus(t Tier, s Status) {
	if t.Is4K() {
		m.Status4K = s
		return
	}
	m.Status = s
}

// Fields returns a pointer to the external references of tier t.
func (m *Media) Fields(t Tier) *TierFields {
	if t.Is4K() {
		return &m.FourK
	}
	return &m.Standard
}

// ClearTier drops every external reference held for tier t.
func (m *Media) ClearTier(t Tier) {
	*m.Fields(t) = TierFields{}
}

// Season is the per-season status of a show.
type Season struct {
	ID           int64
	MediaID      int64
	SeasonNumber int
	Status       Status
	Status4K     Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StatusFor returns the season status for tier t.
func (s *Season) StatusFor(t Tier) Status {
	if t.Is4K() {
		return s.Status4K
	}
	return s.Status
}

// SetStatus sets the season status for tier t.
func (s *Season) SetStatus(t Tier, st Status) {
	if t.Is4K() {
		s.Status4K = st
		return
	}
	s.Status = st
}

// Request is one user request for a title in one tier.
type Request struct {
	ID            int64
	MediaID       int64
	Type          Type
	Is4K          bool
	Status        RequestStatus
	RequestedByID int64
	ModifiedByID  *int64
	IsAutoRequest bool

	// Overrides of the download manager defaults. Nil means "use default".
	ServerID          *int64
	ProfileID         *int64
	RootFolder        *string
	LanguageProfileID *int64
	// Tags is nil for "use default"; an empty non-nil slice means "no tags".
	Tags []int

	Seasons   []SeasonRequest
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tier returns the quality tier of the request.
func (r *Request) Tier() Tier { return TierOf(r.Is4K) }

// SeasonRequest is one requested season of a TV request.
type SeasonRequest struct {
	ID           int64
	RequestID    int64
	SeasonNumber int
	Status       RequestStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Permission is a capability bit held by a user.
type Permission int64

const (
	PermissionAdmin              Permission = 1 << 1
	PermissionManageRequests     Permission = 1 << 4
	PermissionRequest            Permission = 1 << 5
	PermissionAutoApprove        Permission = 1 << 7
	PermissionAutoApprove4K      Permission = 1 << 10
	PermissionRequest4K          Permission = 1 << 11
	PermissionAutoApproveMovie   Permission = 1 << 12
	PermissionAutoApproveTV      Permission = 1 << 13
	PermissionAutoApprove4KMovie Permission = 1 << 14
	PermissionAutoApprove4KTV    Permission = 1 << 15
	PermissionRequest4KMovie     Permission = 1 << 16
	PermissionRequest4KTV        Permission = 1 << 17
	PermissionRequestMovie       Permission = 1 << 18
	PermissionRequestTV          Permission = 1 << 19
)

// User is a request owner or actor.
type User struct {
	ID          int64
	DisplayName string
	PlexToken   string
	Permissions Permission
	CreatedAt   time.Time
}

// HasAny reports whether u holds any of perms. Admins hold everything.
func (u *User) HasAny(perms ...Permission) bool {
	if u.Permissions&PermissionAdmin != 0 {
		return true
	}
	for _, p := range perms {
		if u.Permissions&p != 0 {
			return true
		}
	}
	return false
}

// CanRequest reports whether u may request titles of type t in tier tier.
func (u *User) CanRequest(t Type, tier Tier) bool {
	switch {
	case t == TypeMovie && tier.Is4K():
		return u.HasAny(PermissionRequest4K, PermissionRequest4KMovie)
	case t == TypeMovie:
		return u.HasAny(PermissionRequest, PermissionRequestMovie)
	case tier.Is4K():
		return u.HasAny(PermissionRequest4K, PermissionRequest4KTV)
	default:
		return u.HasAny(PermissionRequest, PermissionRequestTV)
	}
}

// CanAutoApprove reports whether requests made by u for type t in tier tier
// skip the approval step.
func (u *User) CanAutoApprove(t Type, tier Tier) bool {
	switch {
	case t == TypeMovie && tier.Is4K():
		return u.HasAny(PermissionAutoApprove4K, PermissionAutoApprove4KMovie, PermissionManageRequests)
	case t == TypeMovie:
		return u.HasAny(PermissionAutoApprove, PermissionAutoApproveMovie, PermissionManageRequests)
	case tier.Is4K():
		return u.HasAny(PermissionAutoApprove4K, PermissionAutoApprove4KTV, PermissionManageRequests)
	default:
		return u.HasAny(PermissionAutoApprove, PermissionAutoApproveTV, PermissionManageRequests)
	}
}
