package engine

import "context"

// Action names a gallery operation checked by the gate.
type Action string

const (
	ActionGalleryList   Action = "gallery.list"
	ActionGalleryUpload Action = "gallery.upload"
	ActionGalleryDelete Action = "gallery.delete"
)

// Reasons returned in Decision.Reason by the default policy.
const (
	ReasonAllowed         = "allowed"
	ReasonUnknownAction   = "unknown_action"
	ReasonSessionNotValid = "session_not_valid"
)

// SessionInput is what the policy sees of the requesting session.
type SessionInput struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Input is the document passed to the policy as input.
type Input struct {
	Action  Action       `json:"action"`
	Session SessionInput `json:"session"`
}

// Decision is the policy result for one Input.
type Decision struct {
	Allowed bool
	// Privileged reports whether the action needs an authorized session.
	Privileged bool
	Reason     string
}

// Evaluator decides whether an action may proceed.
type Evaluator interface {
	Evaluate(ctx context.Context, in Input) (Decision, error)
}
