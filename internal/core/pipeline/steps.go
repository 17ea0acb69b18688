// Package pipeline orders CRUD generation into gated steps, plans every
// artifact before anything is written and runs the plan step by step.
package pipeline

import (
	"github.com/example/crudmaker/internal/scaffold"
)

// Step names, in run order.
const (
	StepCore     = "core"
	StepApp      = "app"
	StepTests    = "tests"
	StepFactory  = "factory"
	StepAPI      = "api"
	StepDatabase = "database"
)

// Part is one artifact family built within a step.
type Part struct {
	Report       string                      // report line, added when the part produced files
	SchemaReport string                      // follows Report when the run declares a schema
	Enabled      func(scaffold.Options) bool // nil means always
	Build        func(*scaffold.Generator) ([]scaffold.GeneratedFile, error)
}

// Step is a gated group of parts.
type Step struct {
	Name    string
	Enabled func(scaffold.Options) bool // nil means always
	Parts   []Part
}

func always(scaffold.Options) bool { return true }

// IsEnabled reports whether the step runs for opts.
func (s Step) IsEnabled(opts scaffold.Options) bool {
	if s.Enabled == nil {
		return true
	}
	return s.Enabled(opts)
}

// DefaultSteps returns the standard generation order.
func DefaultSteps() []Step {
	return []Step{
		{
			Name:    StepCore,
			Enabled: always,
			Parts: []Part{
				{Report: "Built repository...", Build: (*scaffold.Generator).Repository},
				{Report: "Built request...", Build: (*scaffold.Generator).Request},
				{Report: "Built service...", Build: (*scaffold.Generator).Service},
			},
		},
		{
			Name:    StepApp,
			Enabled: scaffold.Options.AppBased,
			Parts: []Part{
				{Report: "Built controller...", Build: (*scaffold.Generator).Controller},
				{Report: "Built views...", Build: (*scaffold.Generator).Views},
				{Report: "Appended routes...", Build: (*scaffold.Generator).Routes},
				{
					Report:  "Built facade...",
					Enabled: func(o scaffold.Options) bool { return o.WithFacade },
					Build:   (*scaffold.Generator).Facade,
				},
			},
		},
		{
			Name:    StepTests,
			Enabled: always,
			Parts: []Part{
				{Report: "Built tests...", Build: (*scaffold.Generator).Tests},
			},
		},
		{
			Name:    StepFactory,
			Enabled: always,
			Parts: []Part{
				{Report: "Appended factory...", Build: (*scaffold.Generator).Factory},
			},
		},
		{
			Name:    StepAPI,
			Enabled: scaffold.Options.WantsAPI,
			Parts: []Part{
				{Report: "Built api...", Build: (*scaffold.Generator).API},
			},
		},
		{
			Name:    StepDatabase,
			Enabled: func(o scaffold.Options) bool { return o.Migration },
			Parts: []Part{
				{Report: "Built migration...", SchemaReport: "Built schema...", Build: (*scaffold.Generator).Migration},
			},
		},
	}
}
