package telemetry

import "time"

// EventType names a gate transition or decision.
type EventType string

const (
	EventOTPIssued          EventType = "otp_issued"
	EventOTPDispatchFailed  EventType = "otp_dispatch_failed"
	EventOTPVerified        EventType = "otp_verified"
	EventOTPRejected        EventType = "otp_rejected"
	EventSessionAuthorized  EventType = "session_authorized"
	EventSessionInvalidated EventType = "session_invalidated"
	EventPrivilegedAllowed  EventType = "privileged_allowed"
	EventPrivilegedDenied   EventType = "privileged_denied"
)

// SourceGate is the Source of every event the gate emits.
const SourceGate = "gate"

// Event is one gate event. The JSON form is the Kafka message value consumed by the worker.
type Event struct {
	Type      EventType         `json:"eventType"`
	SessionID string            `json:"sessionId,omitempty"`
	Email     string            `json:"email,omitempty"`
	Action    string            `json:"action,omitempty"`
	Outcome   string            `json:"outcome,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewEvent returns an event of the given type stamped with at in UTC.
func NewEvent(typ EventType, sessionID string, at time.Time) *Event {
	return &Event{
		Type:      typ,
		SessionID: sessionID,
		Source:    SourceGate,
		CreatedAt: at.UTC(),
	}
}
