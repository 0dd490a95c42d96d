package requests

import "errors"

// Sentinel errors for the requests package.
var (
	// ErrDuplicateRequest is returned when a non-declined request already
	// covers the title in the requested tier.
	ErrDuplicateRequest = errors.New("request for this media already exists")

	// ErrNoSeasonsAvailable is returned when every requested season is
	// already requested or present.
	ErrNoSeasonsAvailable = errors.New("no seasons available to request")

	// ErrInvalidTransition is returned when a request cannot move to the
	// target status.
	ErrInvalidTransition = errors.New("invalid request status transition")

	// ErrPermission is returned when the actor lacks the capability for an
	// operation.
	ErrPermission = errors.New("permission denied")

	// ErrNoInstance is returned when no download manager instance matches the
	// request tier or override.
	ErrNoInstance = errors.New("no download manager instance configured")

	// ErrMissingTVDB is returned when a series cannot be submitted because no
	// TVDB id is known for it.
	ErrMissingTVDB = errors.New("tvdb id not found")
)
