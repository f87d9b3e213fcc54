package vitals

import "fmt"

// MalformedSnapshotError reports a snapshot missing required source fields.
// The ingestion is fatal for that snapshot and is never retried internally.
type MalformedSnapshotError struct {
	Field string
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("malformed snapshot: missing %s", e.Field)
}

// Persistence stage names, in write order.
const (
	StageTests         = "tests"
	StageMetrics       = "metrics"
	StageDistributions = "distributions"
)

// PersistenceError reports which write stage failed. Earlier stages stay
// written; the caller treats the whole ingestion as not-yet-ingested and may
// retry it in full.
type PersistenceError struct {
	Stage string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed at stage %s: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UpstreamError reports a failed call to the performance-measurement API.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pagespeed upstream unavailable: %v", e.Err)
	}
	return fmt.Sprintf("pagespeed upstream responded with status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
