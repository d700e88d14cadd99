package n2f

import "time"

// ActionType represents the type of mutating operation behind an outcome.
type ActionType string

const (
	// ActionCreate creates a new entity on the target.
	ActionCreate ActionType = "create"
	// ActionUpdate updates an existing entity on the target.
	ActionUpdate ActionType = "update"
	// ActionDelete removes an entity from the target.
	ActionDelete ActionType = "delete"
)

// Outcome is the uniform success/failure record produced by every mutating
// call. It is created once, never mutated afterward, and appended to the
// run-level outcome list regardless of whether the call succeeded.
type Outcome struct {
	// Success indicates whether the call completed with a 2xx status.
	Success bool `json:"success"`

	// Message is a short human-readable result description.
	Message string `json:"message"`

	// StatusCode is the HTTP status of the response, 0 when the call never
	// reached the target (network or encoding failure).
	StatusCode int `json:"status_code,omitempty"`

	// DurationMs is the wall-clock duration of the call in milliseconds.
	DurationMs float64 `json:"duration_ms,omitempty"`

	// Timestamp is when the outcome was recorded.
	Timestamp time.Time `json:"timestamp"`

	// ErrorDetails carries the response body or error text for failures.
	ErrorDetails string `json:"error_details,omitempty"`

	// Action is the mutating operation (create, update, delete).
	Action ActionType `json:"action_type"`

	// ObjectType is the entity kind (user, axe).
	ObjectType string `json:"object_type"`

	// ObjectID is the natural key of the entity (email, code).
	ObjectID string `json:"object_id"`

	// Scope is the synchronization scope the call belongs to.
	Scope string `json:"scope"`

	// Simulated marks outcomes produced without any network call.
	Simulated bool `json:"simulated,omitempty"`
}

// SuccessOutcome builds an outcome for a completed 2xx call.
func SuccessOutcome(message string, statusCode int, durationMs float64, action ActionType, objectType, objectID, scope string) Outcome {
	return Outcome{
		Success:    true,
		Message:    message,
		StatusCode: statusCode,
		DurationMs: durationMs,
		Timestamp:  time.Now(),
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		Scope:      scope,
	}
}

// FailureOutcome builds an outcome for a failed call. statusCode is 0 when
// the failure happened before a response was received.
func FailureOutcome(message string, statusCode int, durationMs float64, errorDetails string, action ActionType, objectType, objectID, scope string) Outcome {
	return Outcome{
		Success:      false,
		Message:      message,
		StatusCode:   statusCode,
		DurationMs:   durationMs,
		Timestamp:    time.Now(),
		ErrorDetails: errorDetails,
		Action:       action,
		ObjectType:   objectType,
		ObjectID:     objectID,
		Scope:        scope,
	}
}

// SimulatedOutcome builds the deterministic synthetic success returned in
// simulate mode, where no network call takes place.
func SimulatedOutcome(action ActionType, objectType, objectID, scope string) Outcome {
	return Outcome{
		Success:    true,
		Message:    "Simulated " + string(action),
		StatusCode: 200,
		Simulated:  true,
		Timestamp:  time.Now(),
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		Scope:      scope,
	}
}
