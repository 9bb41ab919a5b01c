package model

import "time"

// RunStatus represents the current state of a fetch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// FileStatus is the outcome for one supplementary file.
type FileStatus string

const (
	FileStatusDownloaded FileStatus = "downloaded"
	FileStatusSkipped    FileStatus = "skipped" // not an ftp:// URL
	FileStatusFailed     FileStatus = "failed"
)

// Run is one invocation of the fetch command for a single accession.
type Run struct {
	ID            string        `json:"id" yaml:"id"`
	Accession     string        `json:"accession" yaml:"accession"`
	Status        RunStatus     `json:"status" yaml:"status"`
	Title         string        `json:"title,omitempty" yaml:"title,omitempty"`
	Samples       int           `json:"samples" yaml:"samples"`
	FileCount     int           `json:"file_count" yaml:"file_count"`
	Files         []FileRecord  `json:"files,omitempty" yaml:"files,omitempty"`
	ErrorCategory ErrorCategory `json:"error_category,omitempty" yaml:"error_category,omitempty"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt     time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" yaml:"updated_at"`
}

// FileRecord describes what happened to one supplementary file URL.
type FileRecord struct {
	RunID      string     `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	URL        string     `json:"url" yaml:"url"`
	Filename   string     `json:"filename" yaml:"filename"`
	Path       string     `json:"path,omitempty" yaml:"path,omitempty"`
	Bytes      int64      `json:"bytes" yaml:"bytes"`
	Status     FileStatus `json:"status" yaml:"status"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time  `json:"finished_at" yaml:"finished_at"`
}

// RunSummary is the final state written when a run ends.
type RunSummary struct {
	Status        RunStatus
	Title         string
	Samples       int
	ErrorCategory ErrorCategory
	Error         string
}
