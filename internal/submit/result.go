package submit

import "fmt"

// Kind classifies a round-trip.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindRejected       Kind = "rejected"
	KindNetworkFailure Kind = "network_failure"
)

// Outcome is the two-valued view the form reacts to.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Result is the tagged result of Send.
type Result struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response arrived.
	Status int
	// Err is nil on success, a *RejectedError for KindRejected and the
	// transport error for KindNetworkFailure.
	Err error
	// RequestID is the X-Request-ID sent with the request.
	RequestID string
}

// Outcome collapses every non-success kind into OutcomeError.
func (r Result) Outcome() Outcome {
	if r.Kind == KindSuccess {
		return OutcomeSuccess
	}
	return OutcomeError
}

// RejectedError reports a response other than 201 Created.
type RejectedError struct {
	Status int
	Body   string // truncated excerpt
}

func (e *RejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("endpoint responded HTTP %d", e.Status)
	}
	return fmt.Sprintf("endpoint responded HTTP %d: %s", e.Status, e.Body)
}
