package domain

import "net/http"

// Outcome classifies the result of an account operation.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeCreated      Outcome = "created"
	OutcomeDeleted      Outcome = "deleted"
	OutcomeInvalidInput Outcome = "invalid_input"
	OutcomeConflict     Outcome = "conflict"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeInternal     Outcome = "internal"
)

// Result is the uniform response of every account operation. Status is the
// HTTP code the transport must answer with.
type Result struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`

	Outcome Outcome `json:"-"`
	Err     error   `json:"-"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

func NewResult(outcome Outcome, status int, message string) Result {
	return Result{Status: status, Message: message, Outcome: outcome}
}

// Invalid builds a 400 validation failure.
func Invalid(message string) Result {
	return NewResult(OutcomeInvalidInput, http.StatusBadRequest, message)
}

// Unauthorized builds a 401 failure.
func Unauthorized(message string) Result {
	return NewResult(OutcomeUnauthorized, http.StatusUnauthorized, message)
}

// Internal builds a 500 failure. err is kept for logging only.
func Internal(err error) Result {
	r := NewResult(OutcomeInternal, http.StatusInternalServerError, "Internal server error")
	r.Err = err
	return r
}
