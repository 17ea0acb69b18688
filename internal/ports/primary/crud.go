package primary

import "context"

// CrudService defines the primary port for CRUD generation.
type CrudService interface {
	// Generate renders and writes a CRUD stack for one table.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// History lists journaled runs, newest first.
	History(ctx context.Context, req HistoryRequest) ([]*Run, error)

	// Publish copies the default templates into the project for customisation.
	Publish(ctx context.Context, req PublishRequest) (*PublishResponse, error)
}

// ProgressObserver receives generation progress ticks.
type ProgressObserver interface {
	Start(total int)
	Advance(step string, ran bool)
	Finish()
}

// GenerateRequest contains parameters for generating a CRUD.
type GenerateRequest struct {
	Table         string
	BasePath      string
	Framework     string
	UI            string
	API           bool
	APIOnly       bool
	ServiceOnly   bool
	WithFacade    bool
	Migration     bool
	Schema        string
	Relationships string
	ConfigPath    string // empty means discover in BasePath
	JournalPath   string // empty means the config's journal, if any
	Record        bool   // journal to the default journal when none is configured
	DryRun        bool
	Progress      ProgressObserver // optional
}

// GenerateResponse contains the result of generating a CRUD.
type GenerateResponse struct {
	TableName      string
	Section        string
	TemplateSource string
	Report         []string
	Files          []GeneratedFile
	NextSteps      []string
	DryRun         bool
	RunID          int64 // zero when no journal is configured
}

// GeneratedFile is one artifact at the port boundary.
type GeneratedFile struct {
	Step      string
	Path      string
	Operation string // create, append
	Bytes     int
}

// HistoryRequest contains parameters for listing journaled runs.
type HistoryRequest struct {
	BasePath    string
	ConfigPath  string
	JournalPath string
	Limit       int   // zero or less means all runs
	RunID       int64 // when set, only this run is returned
}

// PublishRequest contains parameters for publishing templates.
type PublishRequest struct {
	BasePath  string
	Framework string
	Force     bool // overwrite published templates and the config file
}

// PublishResponse contains the result of publishing templates.
type PublishResponse struct {
	TemplateDir string
	ConfigPath  string // empty when an existing config was kept
	Written     []string
	Skipped     []string
}

// Run represents a journaled run at the port boundary.
type Run struct {
	ID        int64
	TableName string
	Section   string
	Framework string
	BasePath  string
	Status    string
	Error     string
	CreatedAt string
	Files     []GeneratedFile
}
