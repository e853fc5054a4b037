package core

import (
	"time"

	"github.com/JonMunkholm/shiprec/internal/exchange"
)

// JobOperation is the direction of a job.
type JobOperation string

const (
	OpImport JobOperation = "import"
	OpExport JobOperation = "export"
)

// Job phases beyond the importer's own. Exports have no passes and report
// PhaseRunning while writing.
const (
	PhaseQueued  exchange.Phase = "queued"
	PhaseRunning exchange.Phase = "running"
)

// JobProgress represents the current state of a job.
type JobProgress struct {
	JobID      string         `json:"jobId"`
	StatusID   int64          `json:"statusId,omitempty"`
	Kind       string         `json:"kind"`
	Operation  JobOperation   `json:"operation"`
	FileName   string         `json:"fileName,omitempty"`
	Phase      exchange.Phase `json:"phase"`
	Records    int            `json:"records"`
	Error      string         `json:"error,omitempty"`
	Code       string         `json:"code,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
}

// Done reports whether the job has finished, successfully or not.
func (p JobProgress) Done() bool {
	return p.Phase == exchange.PhaseDone || p.Phase == exchange.PhaseFailed
}

// Duration is the elapsed time so far, or the total time once done.
func (p JobProgress) Duration(now time.Time) time.Duration {
	if p.FinishedAt != nil {
		return p.FinishedAt.Sub(p.StartedAt)
	}
	return now.Sub(p.StartedAt)
}
