package media

// validTransitions defines allowed request state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
var validTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:   {RequestApproved, RequestDeclined},
	RequestApproved:  {RequestApproved, RequestDeclined, RequestCompleted}, // re-approval resubmits
	RequestDeclined:  {},                                                   // terminal
	RequestCompleted: {},                                                   // terminal
}

// CanTransitionTo returns true if moving a request from s to target is valid.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if s has no outgoing transitions.
func (s RequestStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
