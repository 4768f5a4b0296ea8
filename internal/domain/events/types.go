package events

// EventType defines the type of event published on the host event bus
type EventType string

const (
	// Lifecycle Events
	ServerStatusChanged EventType = "server.statusChanged"
	RebuildStarted      EventType = "server.rebuildStarted"
	RebuildCompleted    EventType = "server.rebuildCompleted"

	// Worker Events
	WorkerFailed     EventType = "worker.failed"
	WorkerRegistered EventType = "worker.registered"

	// Config Events
	ConfigSaved EventType = "config.saved"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}

// StatusPayload is the body of every ServerStatusChanged event
type StatusPayload struct {
	ServerStatus string `json:"serverStatus"`
	ServerError  string `json:"serverError,omitempty"`
}
