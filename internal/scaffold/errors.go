package scaffold

import (
	"errors"
	"strings"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrConfiguration       = errors.New("crudmaker: configuration error")
	ErrInvalidSchema       = errors.New("crudmaker: invalid schema")
	ErrInvalidRelationship = errors.New("crudmaker: invalid relationship")
	ErrTemplateResolution  = errors.New("crudmaker: template resolution failed")
	ErrGeneration          = errors.New("crudmaker: generation failed")
)

// ConfigurationError reports a malformed table/section split or an invalid
// combination of options or configuration values.
type ConfigurationError struct {
	Input   string // offending input, if any
	Message string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration")
	if e.Input != "" {
		b.WriteString(" for ")
		b.WriteString(quote(e.Input))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// InvalidSchemaError reports an unknown column type or a malformed column entry.
type InvalidSchemaError struct {
	Token   string // the offending token, e.g. "bogus"
	Entry   string // the full column entry, e.g. "name:bogus"
	Message string
}

func (e *InvalidSchemaError) Error() string {
	var b strings.Builder
	b.WriteString("invalid schema")
	if e.Entry != "" {
		b.WriteString(" entry ")
		b.WriteString(quote(e.Entry))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is reports whether target is ErrInvalidSchema.
func (e *InvalidSchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// InvalidRelationshipError reports a relationship entry that is not kind|Target|column.
type InvalidRelationshipError struct {
	Token   string
	Message string
}

func (e *InvalidRelationshipError) Error() string {
	return "invalid relationship " + quote(e.Token) + ": " + e.Message
}

// Is reports whether target is ErrInvalidRelationship.
func (e *InvalidRelationshipError) Is(target error) bool { return target == ErrInvalidRelationship }

// TemplateResolutionError reports a template source or template body that is
// missing or unreadable.
type TemplateResolutionError struct {
	Template string
	Cause    error
}

func (e *TemplateResolutionError) Error() string {
	msg := "cannot resolve template " + quote(e.Template)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TemplateResolutionError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrTemplateResolution.
func (e *TemplateResolutionError) Is(target error) bool { return target == ErrTemplateResolution }

// GenerationError wraps the first failure raised while a pipeline step was
// writing its artifacts.
type GenerationError struct {
	Step  string
	Cause error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("unable to generate your CRUD")
	if e.Step != "" {
		b.WriteString(" (")
		b.WriteString(e.Step)
		b.WriteString(" step)")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

func quote(s string) string {
	return `"` + s + `"`
}
