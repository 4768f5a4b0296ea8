package domain

import (
	"fmt"
	"sort"
)

// ServerStatus is the lifecycle state of the host
type ServerStatus string

const (
	// ServerStatusOffline is the state before the first build
	ServerStatusOffline ServerStatus = "offline"
	// ServerStatusRebuilding means workers are loading and schemas are being built
	ServerStatusRebuilding ServerStatus = "rebuilding"
	// ServerStatusOnline means the full web listener is serving
	ServerStatusOnline ServerStatus = "online"
	// ServerStatusAdmin means a build failed and only the admin listener serves
	ServerStatusAdmin ServerStatus = "admin"
)

// ServerTransition is an action that changes server status
type ServerTransition string

const (
	TransitionBuild    ServerTransition = "Build"
	TransitionComplete ServerTransition = "Complete"
	TransitionFail     ServerTransition = "Fail"
	TransitionRefresh  ServerTransition = "Refresh"
)

// ServerStateMachine enforces the lifecycle transitions of the host.
//
//	[Offline] ──Build──► [Rebuilding] ──Complete──► [Online]
//	                        │   ▲                      │
//	                      Fail  └──────Refresh─────────┘
//	                        ▼   │
//	                     [Admin]┘ (Refresh)
type ServerStateMachine struct {
	transitions map[stateTransitionKey]ServerStatus
}

type stateTransitionKey struct {
	state      ServerStatus
	transition ServerTransition
}

// NewServerStateMachine creates a state machine with the host lifecycle rules
func NewServerStateMachine() *ServerStateMachine {
	sm := &ServerStateMachine{
		transitions: make(map[stateTransitionKey]ServerStatus),
	}

	sm.addTransition(ServerStatusOffline, TransitionBuild, ServerStatusRebuilding)
	sm.addTransition(ServerStatusRebuilding, TransitionComplete, ServerStatusOnline)
	sm.addTransition(ServerStatusRebuilding, TransitionFail, ServerStatusAdmin)
	sm.addTransition(ServerStatusOnline, TransitionRefresh, ServerStatusRebuilding)
	sm.addTransition(ServerStatusAdmin, TransitionRefresh, ServerStatusRebuilding)

	return sm
}

func (sm *ServerStateMachine) addTransition(from ServerStatus, via ServerTransition, to ServerStatus) {
	sm.transitions[stateTransitionKey{state: from, transition: via}] = to
}

// Transition returns the next state, or an error and the unchanged state
// if the action is not allowed from current.
func (sm *ServerStateMachine) Transition(current ServerStatus, action ServerTransition) (ServerStatus, error) {
	next, ok := sm.transitions[stateTransitionKey{state: current, transition: action}]
	if !ok {
		return current, fmt.Errorf("invalid server transition: cannot %s from %s", action, current)
	}
	return next, nil
}

// CanTransition checks if a transition is valid without performing it.
func (sm *ServerStateMachine) CanTransition(current ServerStatus, action ServerTransition) bool {
	_, ok := sm.transitions[stateTransitionKey{state: current, transition: action}]
	return ok
}

// ValidTransitions returns all valid transitions from the given state, sorted.
func (sm *ServerStateMachine) ValidTransitions(state ServerStatus) []ServerTransition {
	var result []ServerTransition
	for key := range sm.transitions {
		if key.state == state {
			result = append(result, key.transition)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// IsServing reports whether the full web surface is mounted in this state
func (sm *ServerStateMachine) IsServing(state ServerStatus) bool {
	return state == ServerStatusOnline
}
