// Package templates locates CRUD templates: the defaults embedded in the
// binary or a directory the user published and customised.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/crudmaker/internal/scaffold"
)

//go:embed crud
var crudTemplates embed.FS

// OverrideDir is where published templates live, relative to the project root.
var OverrideDir = filepath.Join("resources", "crudmaker", "crud")

// Source reads templates below one framework template root.
type Source struct {
	fsys fs.FS
	root string // human-readable location for messages
}

// NewSource creates a Source over fsys. root describes where fsys lives.
func NewSource(fsys fs.FS, root string) *Source {
	return &Source{fsys: fsys, root: root}
}

// Embedded returns the default templates for framework.
func Embedded(framework scaffold.Framework) (*Source, error) {
	sub, err := fs.Sub(crudTemplates, "crud/"+string(framework))
	if err != nil {
		return nil, &scaffold.TemplateResolutionError{Template: "crud/" + string(framework), Cause: err}
	}
	if _, err := fs.Stat(sub, "."); err != nil {
		return nil, &scaffold.TemplateResolutionError{Template: "crud/" + string(framework), Cause: err}
	}
	return NewSource(sub, "embedded:crud/"+string(framework)), nil
}

// Dir returns a Source over a template directory on disk.
func Dir(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &scaffold.TemplateResolutionError{Template: dir, Cause: err}
	}
	if !info.IsDir() {
		return nil, &scaffold.TemplateResolutionError{Template: dir, Cause: errors.New("not a directory")}
	}
	return NewSource(os.DirFS(dir), dir), nil
}

// Resolve picks the template source for a run: the configured directory,
// then the published override under base, then the embedded defaults.
// A relative configured directory is taken relative to base.
func Resolve(base, configured string, framework scaffold.Framework) (*Source, error) {
	if configured != "" {
		if !filepath.IsAbs(configured) {
			configured = filepath.Join(base, configured)
		}
		return Dir(configured)
	}

	override := filepath.Join(base, OverrideDir)
	if info, err := os.Stat(override); err == nil && info.IsDir() {
		return Dir(override)
	}

	return Embedded(framework)
}

// Root describes where the templates are read from.
func (s *Source) Root() string {
	return s.root
}

// ReadTemplate returns the template at the slash-separated name.
func (s *Source) ReadTemplate(name string) (scaffold.Template, error) {
	content, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return scaffold.Template{}, &scaffold.TemplateResolutionError{
			Template: name,
			Cause:    fmt.Errorf("failed to read from %s: %w", s.root, err),
		}
	}
	return scaffold.Template{SourcePath: path.Join(s.root, name), RawContent: string(content)}, nil
}

// HasDir reports whether the source has a template directory called name.
func (s *Source) HasDir(name string) bool {
	info, err := fs.Stat(s.fsys, name)
	return err == nil && info.IsDir()
}

// List returns every template name in the source, sorted.
func (s *Source) List() ([]string, error) {
	var names []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".tmpl") {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in %s: %w", s.root, err)
	}
	sort.Strings(names)
	return names, nil
}
