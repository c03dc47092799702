package gate

import "errors"

var (
	// ErrMissingEmail is returned when no email was submitted.
	ErrMissingEmail = errors.New("gate: email is required")
	// ErrNotAdmin is returned when the submitted email is not on the allow-list. Nothing is issued.
	ErrNotAdmin = errors.New("gate: not an administrator")
	// ErrMalformedCode is returned for a code of the wrong shape. Nothing is consumed.
	ErrMalformedCode = errors.New("gate: malformed code")
	// ErrInvalidCode is returned when verification fails. The code is consumed and the session invalidated.
	ErrInvalidCode = errors.New("gate: invalid or expired code")
	// ErrDispatchFailed is returned when the code could not be delivered. The code is rolled back.
	ErrDispatchFailed = errors.New("gate: code dispatch failed")
	// ErrInvalidGrant is returned when an authorization grant is invalid or bound to another session.
	ErrInvalidGrant = errors.New("gate: invalid grant")
	// ErrUnauthorized is returned when the session is not authorized. For privileged actions the
	// session has been invalidated by the time this is returned.
	ErrUnauthorized = errors.New("gate: unauthorized")
	// ErrForbidden is returned when policy denies an action for an authorized session.
	ErrForbidden = errors.New("gate: action not permitted")
	// ErrStoreUnavailable wraps ledger store failures.
	ErrStoreUnavailable = errors.New("gate: store unavailable")
	// ErrPolicyUnavailable is returned when the policy could not be evaluated. The action is refused.
	ErrPolicyUnavailable = errors.New("gate: policy unavailable")
)
