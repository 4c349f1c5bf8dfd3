package feedback

import "encoding/json"

// State is the phase of a submission.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Reason classifies an error status.
type Reason string

const (
	// ReasonValidation is raised locally; the user recovers by editing.
	ReasonValidation Reason = "validation"
	// ReasonConfiguration means no persistence client is configured.
	// Resubmitting does not help.
	ReasonConfiguration Reason = "configuration"
	// ReasonPersistence means the store rejected the insert. Retryable.
	ReasonPersistence Reason = "persistence"
)

// Status is the submission status shown to the user. Only the constructors
// below produce values, so a status carries a message exactly when it is a
// success or an error.
type Status struct {
	state   State
	reason  Reason
	message string
}

func Idle() Status       { return Status{state: StateIdle} }
func Submitting() Status { return Status{state: StateSubmitting} }

func Succeeded(message string) Status {
	return Status{state: StateSuccess, message: message}
}

func Failed(reason Reason, message string) Status {
	return Status{state: StateError, reason: reason, message: message}
}

func (s Status) State() State       { return s.state }
func (s Status) Message() string    { return s.message }
func (s Status) Reason() Reason     { return s.reason }
func (s Status) IsIdle() bool       { return s.state == StateIdle }
func (s Status) IsSubmitting() bool { return s.state == StateSubmitting }
func (s Status) IsSuccess() bool    { return s.state == StateSuccess }
func (s Status) IsError() bool      { return s.state == StateError }

// Terminal reports whether the status is a banner the next edit clears.
func (s Status) Terminal() bool {
	return s.state == StateSuccess || s.state == StateError
}

type statusJSON struct {
	State   string `json:"state"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{
		State:   s.state.String(),
		Reason:  s.reason,
		Message: s.message,
	})
}
