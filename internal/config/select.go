package config

// Instance is implemented by the Radarr and Sonarr instance configs.
type Instance interface {
	Common() ServarrConfig
}

// SelectInstance picks the download manager instance for a submission.
// The default instance of the matching tier is used unless overrideID names
// a different instance, in which case that instance must exist. A negative
// overrideID is ignored.
func SelectInstance[T Instance](instances []T, is4k bool, overrideID *int64) (T, bool) {
	var selected T
	found := false
	for _, in := range instances {
		c := in.Common()
		if c.IsDefault && c.Is4K == is4k {
			selected, found = in, true
			break
		}
	}

	if overrideID == nil || *overrideID < 0 {
		return selected, found
	}
	if found && selected.Common().ID == *overrideID {
		return selected, true
	}

	var zero T
	for _, in := range instances {
		if in.Common().ID == *overrideID {
			return in, true
		}
	}
	return zero, false
}
