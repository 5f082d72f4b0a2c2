package tracker

import "errors"

var (
	ErrEmptyAuthor = errors.New("author is required")
	// ErrSuperseded is returned by Start when Reset or another Start replaced
	// the job while the scan request was in flight.
	ErrSuperseded = errors.New("job superseded before scan was accepted")
	ErrClosed     = errors.New("tracker closed")
)

// Kind classifies why a job ended in the error stage.
type Kind string

const (
	KindStart       Kind = "start_failure"
	KindStatus      Kind = "status_failure"
	KindAggregation Kind = "aggregation_failure"
	// KindRemote means the gateway itself reported an error in the status
	// text, as opposed to a failed request.
	KindRemote Kind = "remote_reported_error"
)

// Failure is the terminal error of a job. All kinds are surfaced the same
// way to presentation code; the kind is kept for logs and callers of Err.
type Failure struct {
	Kind   Kind
	JobID  string
	// Status is the raw status text for KindRemote.
	Status string
	Err    error
}

func (f *Failure) Error() string { return f.Err.Error() }
func (f *Failure) Unwrap() error { return f.Err }
