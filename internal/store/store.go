package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-cli/internal/model"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = eris.New("run not found")

// defaultListLimit caps ListRuns when no limit is given.
const defaultListLimit = 20

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Accession string          `json:"accession,omitempty"`
	Status    model.RunStatus `json:"status,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store defines the persistence interface for download history.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, accession string) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, summary model.RunSummary) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Files
	AddFile(ctx context.Context, runID string, rec model.FileRecord) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
