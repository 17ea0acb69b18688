package secondary

import "context"

// RunRecord represents a journaled generation run as stored in persistence.
type RunRecord struct {
	ID        int64
	TableName string
	Section   string // Empty string means null
	Framework string
	BasePath  string
	Options   string // JSON-encoded generation options
	Status    string // completed, failed
	Error     string // Empty string means null
	CreatedAt string
	Artifacts []*ArtifactRecord
}

// ArtifactRecord represents one file a run wrote or appended to.
type ArtifactRecord struct {
	Step      string
	Path      string
	Operation string // create, append
	Bytes     int
}

// JournalRepository defines the secondary port for the run journal.
type JournalRepository interface {
	// CreateRun persists a run and its artifacts, setting run.ID.
	CreateRun(ctx context.Context, run *RunRecord) error

	// GetRun retrieves a run with its artifacts.
	GetRun(ctx context.Context, id int64) (*RunRecord, error)

	// ListRuns retrieves the most recent runs, newest first, with artifacts.
	// A limit of zero or less means no limit.
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
}
