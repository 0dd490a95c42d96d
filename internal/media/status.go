package media

// DeriveShowStatus computes a show tier status from its seasons: available
// when every season is available, partially available when at least one is,
// and unknown otherwise (request state decides in that case).
func DeriveShowStatus(seasons []*Season, tier Tier) Status {
	if len(seasons) == 0 {
		return StatusUnknown
	}
	available := 0
	partial := false
	for _, s := range seasons {
		switch s.StatusFor(tier) {
		case StatusAvailable:
			available++
		case StatusPartiallyAvailable:
			partial = true
		}
	}
	switch {
	case available == len(seasons):
		return StatusAvailable
	case available > 0 || partial:
		return StatusPartiallyAvailable
	}
	return StatusUnknown
}

// ActiveRequestStatus maps the requests of one tier onto a media status:
// an approved request means processing, a pending one means pending, and
// declined requests count for nothing.
func ActiveRequestStatus(requests []*Request, tier Tier) Status {
	status := StatusUnknown
	for _, r := range requests {
		if r.Tier() != tier {
			continue
		}
		switch r.Status {
		case RequestApproved:
			return StatusProcessing
		case RequestPending:
			status = StatusPending
		}
	}
	return status
}

// DeriveStatus combines library truth with request state for one tier, the
// invariant every cascade in this module preserves.
func DeriveStatus(available Status, requests []*Request, tier Tier) Status {
	if available.IsAvailable() {
		return available
	}
	return ActiveRequestStatus(requests, tier)
}
