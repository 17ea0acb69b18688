// Package scaffold resolves names, paths and placeholders for a CRUD stack and
// renders its artifacts from templates.
package scaffold

// Framework names a target web framework.
type Framework string

const (
	FrameworkLaravel Framework = "Laravel"
	FrameworkLumen   Framework = "Lumen"
)

// UI styles selectable for the generated views.
const (
	UIBootstrap = "bootstrap"
	UISemantic  = "semantic"
)

// Options are the declarative generation flags.
type Options struct {
	API         bool
	APIOnly     bool
	ServiceOnly bool
	WithFacade  bool
	Migration   bool
}

// AppBased reports whether controller, views and routes are generated.
func (o Options) AppBased() bool {
	return !o.ServiceOnly && !o.APIOnly
}

// WantsAPI reports whether API controller and routes are generated.
func (o Options) WantsAPI() bool {
	return o.API || o.APIOnly
}

// ColumnType is one of the whitelisted migration column types.
type ColumnType string

// ColumnSpec is one parsed column definition.
type ColumnSpec struct {
	Name             string
	Type             ColumnType
	Nullable         bool
	IsForeignKeyHint bool // name ends in "_id"
}

// RelationshipKind is a free-form relationship name such as hasOne.
type RelationshipKind string

const (
	HasOne        RelationshipKind = "hasOne"
	HasMany       RelationshipKind = "hasMany"
	BelongsTo     RelationshipKind = "belongsTo"
	BelongsToMany RelationshipKind = "belongsToMany"
)

// RelationshipSpec is one parsed relationship definition.
type RelationshipSpec struct {
	Kind         RelationshipKind
	TargetEntity string // e.g. App\Comment
	ColumnBase   string // foreign key column without its _id suffix
}

// Template is a raw template body read from a template source.
type Template struct {
	SourcePath string
	RawContent string
}

// RenderedArtifact is a template after placeholder substitution.
type RenderedArtifact struct {
	OutputPath   string
	FinalContent string
}

// Operation is how a generated file reaches the file system.
type Operation string

const (
	OperationCreate Operation = "create" // write, overwriting any existing file
	OperationAppend Operation = "append" // append to an existing (or new) file
)

// GeneratedFile is a rendered artifact plus the way it must be written.
type GeneratedFile struct {
	RenderedArtifact
	Operation Operation
	Template  string // template name the artifact was rendered from
}

// TemplateSource reads template bodies by slash-separated name relative to
// the framework template root, e.g. "Views/index.tmpl".
type TemplateSource interface {
	ReadTemplate(name string) (Template, error)
	HasDir(name string) bool
}
