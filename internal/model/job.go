package model

import "time"

// Status labels shown to polling clients. The worker also sets per-row lines
// of the form "Filling: <recipient> (i/n)" while generating.
const (
	StatusQueued     = "Queued"
	StatusGenerating = "Generating…"
	StatusCompleted  = "Completed"
	StatusError      = "Error"
)

// Job is one generation run. Progress counts recipients: each spreadsheet
// row yields two PDFs (full form + contractor copy) but counts as one unit.
// Fields are mutated only by the job's own background worker and read under
// the registry lock.
type Job struct {
	ID              string
	CreatedAt       time.Time
	TotalRecipients int
	DoneRecipients  int
	Status          string
	Finished        bool
	Error           *string
	Archive         []byte
}

// GenerateStartResponse is returned by POST /api/generate/start.
type GenerateStartResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// GenerateProgressResponse is returned by GET /api/generate/progress/:jobId.
// Error is always present (null until the job fails) so the poller can test
// it without probing for the key.
type GenerateProgressResponse struct {
	JobID           string  `json:"job_id"`
	TotalRecipients int     `json:"total_recipients"`
	DoneRecipients  int     `json:"done_recipients"`
	Percent         int     `json:"percent"`
	Status          string  `json:"status"`
	Finished        bool    `json:"finished"`
	Error           *string `json:"error"`
}
