package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusValidating JobStatus = "validating"
	JobStatusRunning    JobStatus = "running"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
	JobStatusTimedOut   JobStatus = "timed_out"
)

// Job encapsulates one font-generation request from upload through tool
// execution. It is transient: nothing about a job survives the request
// that created it except the generated artifact.
type Job struct {
	ID          string
	ImagePath   string
	Family      string
	Style       string
	ArtifactKey string
	Status      JobStatus
	ExitCode    int
	Diagnostic  string
	CreatedAt   time.Time
	FinishedAt  time.Time
}
