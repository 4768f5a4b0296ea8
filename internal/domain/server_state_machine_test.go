package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerStateMachine_Transitions(t *testing.T) {
	sm := NewServerStateMachine()

	tests := []struct {
		name        string
		from        ServerStatus
		action      ServerTransition
		expectedTo  ServerStatus
		shouldError bool
	}{
		{"Offline -> Rebuilding via Build", ServerStatusOffline, TransitionBuild, ServerStatusRebuilding, false},
		{"Rebuilding -> Online via Complete", ServerStatusRebuilding, TransitionComplete, ServerStatusOnline, false},
		{"Rebuilding -> Admin via Fail", ServerStatusRebuilding, TransitionFail, ServerStatusAdmin, false},
		{"Online -> Rebuilding via Refresh", ServerStatusOnline, TransitionRefresh, ServerStatusRebuilding, false},
		{"Admin -> Rebuilding via Refresh", ServerStatusAdmin, TransitionRefresh, ServerStatusRebuilding, false},

		{"Offline -> Online (invalid)", ServerStatusOffline, TransitionComplete, ServerStatusOffline, true},
		{"Online -> Admin (invalid)", ServerStatusOnline, TransitionFail, ServerStatusOnline, true},
		{"Rebuilding -> Rebuilding via Refresh (invalid)", ServerStatusRebuilding, TransitionRefresh, ServerStatusRebuilding, true},
		{"Admin -> Online (invalid)", ServerStatusAdmin, TransitionComplete, ServerStatusAdmin, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			newState, err := sm.Transition(tc.from, tc.action)

			if tc.shouldError {
				assert.Error(t, err)
				assert.Equal(t, tc.from, newState, "State should not change on invalid transition")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedTo, newState)
			}
		})
	}
}

func TestServerStateMachine_ValidTransitions(t *testing.T) {
	sm := NewServerStateMachine()

	assert.Equal(t, []ServerTransition{TransitionBuild}, sm.ValidTransitions(ServerStatusOffline))
	assert.Equal(t, []ServerTransition{TransitionComplete, TransitionFail}, sm.ValidTransitions(ServerStatusRebuilding))
	assert.Equal(t, []ServerTransition{TransitionRefresh}, sm.ValidTransitions(ServerStatusOnline))
	assert.True(t, sm.CanTransition(ServerStatusAdmin, TransitionRefresh))
	assert.False(t, sm.CanTransition(ServerStatusAdmin, TransitionBuild))
}

func TestServerStateMachine_IsServing(t *testing.T) {
	sm := NewServerStateMachine()

	assert.True(t, sm.IsServing(ServerStatusOnline))
	assert.False(t, sm.IsServing(ServerStatusAdmin))
	assert.False(t, sm.IsServing(ServerStatusRebuilding))
}
