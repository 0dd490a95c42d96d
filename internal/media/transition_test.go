package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to RequestStatus
		want     bool
	}{
		{RequestPending, RequestApproved, true},
		{RequestPending, RequestDeclined, true},
		{RequestPending, RequestCompleted, false},
		{RequestApproved, RequestApproved, true},
		{RequestApproved, RequestDeclined, true},
		{RequestApproved, RequestCompleted, true},
		{RequestDeclined, RequestApproved, false},
		{RequestCompleted, RequestPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRequestStatus_IsTerminal(t *testing.T) {
	assert.True(t, RequestDeclined.IsTerminal())
	assert.True(t, RequestCompleted.IsTerminal())
	assert.False(t, RequestPending.IsTerminal())
	assert.False(t, RequestApproved.IsTerminal())
}
