package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/example/crudmaker/internal/config"
	"github.com/example/crudmaker/internal/core/effects"
	"github.com/example/crudmaker/internal/core/pipeline"
	"github.com/example/crudmaker/internal/ports/primary"
	"github.com/example/crudmaker/internal/ports/secondary"
	"github.com/example/crudmaker/internal/scaffold"
	"github.com/example/crudmaker/internal/templates"
)

// Run statuses recorded in the journal.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// JournalOpener opens the run journal stored at path. The returned func
// closes it.
type JournalOpener func(path string) (secondary.JournalRepository, func() error, error)

// CrudServiceImpl implements the CrudService interface.
type CrudServiceImpl struct {
	workspace      secondary.Workspace
	openJournal    JournalOpener // nil disables the journal
	defaultJournal string
	logger         *slog.Logger
	now            func() time.Time
}

var _ primary.CrudService = (*CrudServiceImpl)(nil)

// NewCrudService creates a new CrudService with injected dependencies.
func NewCrudService(workspace secondary.Workspace, openJournal JournalOpener, logger *slog.Logger) *CrudServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrudServiceImpl{
		workspace:   workspace,
		openJournal: openJournal,
		logger:      logger,
		now:         time.Now,
	}
}

// WithDefaultJournal sets the journal used by History, and by Generate with
// Record, when neither a flag nor the config names one.
func (s *CrudServiceImpl) WithDefaultJournal(path string) *CrudServiceImpl {
	s.defaultJournal = path
	return s
}

// WithClock replaces the clock used for migration timestamps.
func (s *CrudServiceImpl) WithClock(now func() time.Time) *CrudServiceImpl {
	s.now = now
	return s
}

// Generate renders and writes a CRUD stack for one table.
func (s *CrudServiceImpl) Generate(ctx context.Context, req primary.GenerateRequest) (*primary.GenerateResponse, error) {
	// 1. Locate the project and its config
	base, err := s.basePath(req.BasePath)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(base, req.ConfigPath)
	if err != nil {
		return nil, err
	}

	// 2. Resolve names, paths and placeholder values
	paths, err := resolvePaths(base, cfg)
	if err != nil {
		return nil, err
	}
	framework := req.Framework
	if framework == "" {
		framework = cfg.Framework
	}
	resolved, err := scaffold.Resolve(scaffold.Input{
		Table:     req.Table,
		Separator: cfg.SectionSeparator,
		Framework: framework,
		UI:        req.UI,
		Options: scaffold.Options{
			API:         req.API,
			APIOnly:     req.APIOnly,
			ServiceOnly: req.ServiceOnly,
			WithFacade:  req.WithFacade,
			Migration:   req.Migration,
		},
		Schema:         req.Schema,
		Relationships:  req.Relationships,
		TemplateSource: cfg.TemplateSource,
	}, paths, cfg.Overlay())
	if err != nil {
		return nil, err
	}

	// 3. Pick the templates
	source, err := templates.Resolve(base, cfg.ResolvePath(cfg.TemplateSource, base), resolved.Framework)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resolved templates", "source", source.Root(), "table", resolved.Identity.TableName)

	// 4. Render everything before writing anything
	gen := scaffold.NewGenerator(resolved, source).WithClock(s.now)
	plan, err := pipeline.GeneratePlan(resolved, gen, pipeline.DefaultSteps())
	if err != nil {
		return nil, err
	}

	resp := &primary.GenerateResponse{
		TableName:      resolved.Identity.TableName,
		Section:        resolved.Identity.Section.Upper(),
		TemplateSource: source.Root(),
		Report:         plan.Report(),
		Files:          planFiles(plan, ""),
		NextSteps:      plan.NextSteps,
		DryRun:         req.DryRun,
	}
	if req.DryRun {
		return resp, nil
	}

	// 5. Execute
	fallback := ""
	if req.Record {
		fallback = s.defaultJournal
	}
	journal, closeJournal := s.journal(journalPath(base, cfg, req.JournalPath, fallback))
	if closeJournal != nil {
		defer closeJournal()
	}
	executor := NewEffectExecutor(s.workspace, journal, s.logger)

	var progress pipeline.Observer = pipeline.NopObserver{}
	if req.Progress != nil {
		progress = req.Progress
	}
	runErr := pipeline.Run(ctx, plan, executor, progress)

	// 6. Journal the run, successful or not
	if journal != nil {
		record := runRecord(base, resolved, plan, runErr)
		persist := effects.PersistEffect{Entity: "run", Operation: "create", Data: record}
		if err := executor.Execute(context.WithoutCancel(ctx), []effects.Effect{persist}); err != nil {
			s.logger.Warn("failed to journal run", "table", resolved.Identity.TableName, "error", err)
		} else {
			resp.RunID = record.ID
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return resp, nil
}

// History lists journaled runs, newest first, or the single run asked for.
func (s *CrudServiceImpl) History(ctx context.Context, req primary.HistoryRequest) ([]*primary.Run, error) {
	base, err := s.basePath(req.BasePath)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(base, req.ConfigPath)
	if err != nil {
		return nil, err
	}

	path := journalPath(base, cfg, req.JournalPath, s.defaultJournal)
	if path == "" || s.openJournal == nil {
		return nil, &scaffold.ConfigurationError{Input: "--journal", Message: "no journal configured; pass --journal or set journal in crudmaker.toml"}
	}
	journal, closeJournal, err := s.openJournal(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer closeJournal()

	if req.RunID > 0 {
		record, err := journal.GetRun(ctx, req.RunID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run %d: %w", req.RunID, err)
		}
		return []*primary.Run{recordToRun(record)}, nil
	}

	records, err := journal.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*primary.Run, len(records))
	for i, r := range records {
		runs[i] = recordToRun(r)
	}
	return runs, nil
}

// Publish copies the embedded templates into the project and writes a
// starter config. Existing files are kept unless req.Force is set.
func (s *CrudServiceImpl) Publish(ctx context.Context, req primary.PublishRequest) (*primary.PublishResponse, error) {
	base, err := s.basePath(req.BasePath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Discover(base)
	if err != nil {
		return nil, err
	}

	name := req.Framework
	if name == "" {
		name = cfg.Framework
	}
	framework, err := scaffold.ParseFramework(name)
	if err != nil {
		return nil, err
	}

	source, err := templates.Embedded(framework)
	if err != nil {
		return nil, err
	}
	names, err := source.List()
	if err != nil {
		return nil, err
	}

	resp := &primary.PublishResponse{TemplateDir: filepath.Join(base, templates.OverrideDir)}
	var effs []effects.Effect

	for _, n := range names {
		dest := filepath.Join(resp.TemplateDir, filepath.FromSlash(n))
		exists, err := s.workspace.FileExists(ctx, dest)
		if err != nil {
			return nil, err
		}
		if exists && !req.Force {
			resp.Skipped = append(resp.Skipped, dest)
			continue
		}

		t, err := source.ReadTemplate(n)
		if err != nil {
			return nil, err
		}
		effs = append(effs, effects.FileEffect{
			Operation: effects.FileWrite,
			Path:      dest,
			Content:   []byte(t.RawContent),
			Mode:      pipeline.FileMode,
		})
		resp.Written = append(resp.Written, dest)
	}

	if cfg.Path() == "" || req.Force {
		configPath := filepath.Join(base, config.FileNames[0])
		data, err := config.Marshal(config.Starter(framework, templates.OverrideDir))
		if err != nil {
			return nil, err
		}
		effs = append(effs, effects.FileEffect{
			Operation: effects.FileWrite,
			Path:      configPath,
			Content:   data,
			Mode:      pipeline.FileMode,
		})
		resp.ConfigPath = configPath
	}

	executor := NewEffectExecutor(s.workspace, nil, s.logger)
	if err := executor.Execute(ctx, effs); err != nil {
		return nil, fmt.Errorf("failed to publish templates: %w", err)
	}
	return resp, nil
}

func (s *CrudServiceImpl) basePath(base string) (string, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	return abs, nil
}

// journal opens the run journal for a generate run. A journal that cannot
// be opened is reported and the run goes ahead without it.
func (s *CrudServiceImpl) journal(path string) (secondary.JournalRepository, func() error) {
	if path == "" || s.openJournal == nil {
		return nil, nil
	}
	journal, closeJournal, err := s.openJournal(path)
	if err != nil {
		s.logger.Warn("journal unavailable, run will not be recorded", "path", path, "error", err)
		return nil, nil
	}
	return journal, closeJournal
}

func loadConfig(base, path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(base)
}

// journalPath applies flag > config > fallback.
func journalPath(base string, cfg *config.Config, flagPath, fallback string) string {
	switch {
	case flagPath != "":
		return flagPath
	case cfg.Journal == ":memory:":
		return cfg.Journal
	case cfg.Journal != "":
		return cfg.ResolvePath(cfg.Journal, base)
	default:
		return fallback
	}
}

// resolvePaths applies config > composer.json > default for the app
// namespace and config > default for the app directory.
func resolvePaths(base string, cfg *config.Config) (scaffold.Paths, error) {
	paths := scaffold.Paths{
		BasePath:     base,
		AppPath:      cfg.ResolvePath(cfg.AppPath, base),
		AppNamespace: cfg.AppNamespace,
	}
	if paths.AppNamespace == "" {
		ns, err := config.DetectNamespace(base)
		if err != nil {
			return scaffold.Paths{}, err
		}
		paths.AppNamespace = ns
	}
	return paths, nil
}

// planFiles flattens the plan, stopping before the step named until when
// it is not empty.
func planFiles(plan pipeline.Plan, until string) []primary.GeneratedFile {
	var files []primary.GeneratedFile
	for _, step := range plan.Steps {
		if step.Name == until {
			break
		}
		for _, f := range step.Files {
			files = append(files, primary.GeneratedFile{
				Step:      step.Name,
				Path:      f.OutputPath,
				Operation: string(f.Operation),
				Bytes:     len(f.FinalContent),
			})
		}
	}
	return files
}

// runRecord builds the journal entry for a run. A failed run records the
// files of the steps that completed before the failing one.
func runRecord(base string, cfg *scaffold.Config, plan pipeline.Plan, runErr error) *secondary.RunRecord {
	options, _ := json.Marshal(struct {
		UI            string `json:"ui,omitempty"`
		API           bool   `json:"api,omitempty"`
		APIOnly       bool   `json:"apiOnly,omitempty"`
		ServiceOnly   bool   `json:"serviceOnly,omitempty"`
		WithFacade    bool   `json:"withFacade,omitempty"`
		Migration     bool   `json:"migration,omitempty"`
		Schema        string `json:"schema,omitempty"`
		Relationships string `json:"relationships,omitempty"`
	}{
		UI:            cfg.UI,
		API:           cfg.Options.API,
		APIOnly:       cfg.Options.APIOnly,
		ServiceOnly:   cfg.Options.ServiceOnly,
		WithFacade:    cfg.Options.WithFacade,
		Migration:     cfg.Options.Migration,
		Schema:        cfg.Schema,
		Relationships: cfg.Value("relationships"),
	})

	record := &secondary.RunRecord{
		TableName: cfg.Identity.TableName,
		Section:   cfg.Identity.Section.Upper(),
		Framework: string(cfg.Framework),
		BasePath:  base,
		Options:   string(options),
		Status:    RunCompleted,
	}

	var files []primary.GeneratedFile
	if runErr != nil {
		record.Status = RunFailed
		record.Error = runErr.Error()

		var genErr *scaffold.GenerationError
		failed := ""
		if errors.As(runErr, &genErr) {
			failed = genErr.Step
		}
		if failed != "" && failed != pipeline.StepDirectories {
			files = planFiles(plan, failed)
		}
	} else {
		files = planFiles(plan, "")
	}

	for _, f := range files {
		record.Artifacts = append(record.Artifacts, &secondary.ArtifactRecord{
			Step:      f.Step,
			Path:      f.Path,
			Operation: f.Operation,
			Bytes:     f.Bytes,
		})
	}
	return record
}

func recordToRun(r *secondary.RunRecord) *primary.Run {
	run := &primary.Run{
		ID:        r.ID,
		TableName: r.TableName,
		Section:   r.Section,
		Framework: r.Framework,
		BasePath:  r.BasePath,
		Status:    r.Status,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
	}
	for _, a := range r.Artifacts {
		run.Files = append(run.Files, primary.GeneratedFile{
			Step:      a.Step,
			Path:      a.Path,
			Operation: a.Operation,
			Bytes:     a.Bytes,
		})
	}
	return run
}
