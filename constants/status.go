package constants

// JobStatus is the canonical status for a document in a batch (extract_jobs.status).
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusPending JobStatus = "PENDING" // submitted, not started
	JobStatusRunning JobStatus = "RUNNING" // text extraction or parsing in progress
	JobStatusDone    JobStatus = "DONE"    // record produced (possibly empty)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// BatchStatus is the canonical status for rows in batches.
type BatchStatus string

const (
	BatchStatusRunning   BatchStatus = "RUNNING"
	BatchStatusCompleted BatchStatus = "COMPLETED"
	BatchStatusFailed    BatchStatus = "FAILED"
)

// CanTransition reports whether a document may move from one status to another.
func (s JobStatus) CanTransition(to JobStatus) bool {
	switch s {
	case JobStatusPending:
		return to == JobStatusRunning
	case JobStatusRunning:
		return to == JobStatusDone || to == JobStatusFailed
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}
