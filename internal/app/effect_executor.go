// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/crudmaker/internal/core/effects"
	"github.com/example/crudmaker/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against a workspace and an
// optional run journal.
type DefaultEffectExecutor struct {
	workspace secondary.Workspace
	journal   secondary.JournalRepository // nil disables persist effects
	logger    *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor. journal may be nil.
func NewEffectExecutor(workspace secondary.Workspace, journal secondary.JournalRepository, logger *slog.Logger) *DefaultEffectExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEffectExecutor{
		workspace: workspace,
		journal:   journal,
		logger:    logger,
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.FileEffect:
		return e.executeFile(ctx, typed)
	case effects.PersistEffect:
		return e.executePersist(ctx, typed)
	case effects.LogEffect:
		e.log(ctx, typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeFile(ctx context.Context, eff effects.FileEffect) error {
	switch eff.Operation {
	case effects.FileMkdir:
		return e.workspace.CreateDirectory(ctx, eff.Path, eff.Mode)
	case effects.FileWrite:
		return e.workspace.WriteFile(ctx, eff.Path, eff.Content, eff.Mode)
	case effects.FileAppend:
		return e.workspace.AppendFile(ctx, eff.Path, eff.Content, eff.Mode)
	default:
		return fmt.Errorf("unknown file operation: %s", eff.Operation)
	}
}

func (e *DefaultEffectExecutor) executePersist(ctx context.Context, eff effects.PersistEffect) error {
	switch eff.Entity {
	case "run":
		return e.executeRunOp(ctx, eff)
	default:
		return fmt.Errorf("unknown entity: %s", eff.Entity)
	}
}

func (e *DefaultEffectExecutor) executeRunOp(ctx context.Context, eff effects.PersistEffect) error {
	switch eff.Operation {
	case "create":
		record, ok := eff.Data.(*secondary.RunRecord)
		if !ok {
			return fmt.Errorf("invalid run create data type: %T", eff.Data)
		}
		if e.journal == nil {
			return nil
		}
		return e.journal.CreateRun(ctx, record)
	default:
		return fmt.Errorf("unknown run operation: %s", eff.Operation)
	}
}

func (e *DefaultEffectExecutor) log(ctx context.Context, eff effects.LogEffect) {
	level := slog.LevelInfo
	switch eff.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	attrs := make([]any, 0, len(eff.Fields)*2)
	for k, v := range eff.Fields {
		attrs = append(attrs, k, v)
	}
	e.logger.Log(ctx, level, eff.Message, attrs...)
}
