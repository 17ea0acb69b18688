// Package effects defines effect types as data structures representing I/O operations.
// Planners return effects; the executor in internal/app is the only place they run.
package effects

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// File operations.
const (
	FileMkdir  = "mkdir"  // create the directory when missing
	FileWrite  = "write"  // create or overwrite
	FileAppend = "append" // append, creating the file when missing
)

// LogEffect represents a diagnostic log line.
type LogEffect struct {
	Level   string // debug, info, warn, error
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// PersistEffect represents a journal persistence operation.
type PersistEffect struct {
	Entity    string // e.g., "run"
	Operation string // e.g., "create"
	Data      any    // The entity data
}

func (e PersistEffect) EffectType() string { return "persist" }

// FileEffect represents a file system operation.
type FileEffect struct {
	Operation string // FileMkdir, FileWrite or FileAppend
	Path      string
	Content   []byte // For write and append operations
	Mode      uint32 // File permissions
}

func (e FileEffect) EffectType() string { return "file" }
