package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/example/crudmaker/internal/core/effects"
	"github.com/example/crudmaker/internal/scaffold"
)

// File modes for generated output.
const (
	DirMode  = 0755
	FileMode = 0644
)

// StepPlan is the rendered output of one step.
type StepPlan struct {
	Name   string
	Ran    bool
	Files  []scaffold.GeneratedFile
	Report []string
}

// Effects returns the writes of the step followed by a debug log line.
func (s StepPlan) Effects() []effects.Effect {
	result := make([]effects.Effect, 0, len(s.Files)+1)
	for _, f := range s.Files {
		op := effects.FileWrite
		if f.Operation == scaffold.OperationAppend {
			op = effects.FileAppend
		}
		result = append(result, effects.FileEffect{
			Operation: op,
			Path:      f.OutputPath,
			Content:   []byte(f.FinalContent),
			Mode:      FileMode,
		})
	}
	result = append(result, effects.LogEffect{
		Level:   "debug",
		Message: "step complete",
		Fields:  map[string]any{"step": s.Name, "files": len(s.Files)},
	})
	return result
}

// Plan is a fully rendered generation run. Nothing has been written yet.
type Plan struct {
	Table       string
	Directories []effects.FileEffect
	Steps       []StepPlan
	NextSteps   []string
}

// Ticks is the number of progress ticks a run reports: one per step plus
// the finish.
func (p Plan) Ticks() int {
	return len(p.Steps) + 1
}

// Files returns every planned file in write order.
func (p Plan) Files() []scaffold.GeneratedFile {
	var files []scaffold.GeneratedFile
	for _, s := range p.Steps {
		files = append(files, s.Files...)
	}
	return files
}

// Report returns the report lines of every step that ran.
func (p Plan) Report() []string {
	var lines []string
	for _, s := range p.Steps {
		lines = append(lines, s.Report...)
	}
	return lines
}

// GeneratePlan renders every enabled step. Templates are read but nothing is
// written, so template and placeholder errors surface before any mutation.
func GeneratePlan(cfg *scaffold.Config, gen *scaffold.Generator, steps []Step) (Plan, error) {
	plan := Plan{Table: cfg.Identity.TableName}

	for _, dir := range cfg.SectionDirectories() {
		plan.Directories = append(plan.Directories, effects.FileEffect{
			Operation: effects.FileMkdir,
			Path:      dir,
			Mode:      DirMode,
		})
	}

	for _, step := range steps {
		sp := StepPlan{Name: step.Name, Ran: step.IsEnabled(cfg.Options)}
		if sp.Ran {
			for _, part := range step.Parts {
				if part.Enabled != nil && !part.Enabled(cfg.Options) {
					continue
				}
				files, err := part.Build(gen)
				if err != nil {
					return Plan{}, fmt.Errorf("failed to plan %s step: %w", step.Name, err)
				}
				if len(files) > 0 && part.Report != "" {
					sp.Report = append(sp.Report, part.Report)
					if part.SchemaReport != "" && cfg.Schema != "" {
						sp.Report = append(sp.Report, part.SchemaReport)
					}
				}
				sp.Files = append(sp.Files, files...)
			}
		}
		plan.Steps = append(plan.Steps, sp)
	}

	plan.NextSteps = nextSteps(cfg)
	return plan, nil
}

// nextSteps lists the manual follow-ups for a run.
func nextSteps(cfg *scaffold.Config) []string {
	var steps []string
	if cfg.Options.WantsAPI() {
		rel, err := filepath.Rel(filepath.Dir(cfg.Value("_path_routes_")), cfg.Value("_path_api_routes_"))
		if err != nil {
			rel = filepath.Base(cfg.Value("_path_api_routes_"))
		}
		steps = append(steps, fmt.Sprintf("Add require __DIR__.'/%s'; to %s to register the api routes", filepath.ToSlash(rel), cfg.Value("_path_routes_")))
	}
	if !cfg.Options.Migration {
		steps = append(steps, fmt.Sprintf("You will need to create a migration for: %s", cfg.Identity.TableName))
	}
	steps = append(steps, "You may wish to add an in-memory sqlite testing database: 'testing' => ['driver' => 'sqlite', 'database' => ':memory:', 'prefix' => '']")
	return steps
}
