package scaffold

import (
	"errors"
	"path/filepath"
	"time"
)

// View pages rendered for every CRUD.
var viewPages = []string{"index", "create", "edit", "show"}

// MigrationTimeLayout prefixes migration file names.
const MigrationTimeLayout = "2006_01_02_150405"

// Generator renders the artifacts of one resolved config. It only reads
// templates; writing the results is left to the caller.
type Generator struct {
	cfg    *Config
	source TemplateSource
	engine *Engine
	now    func() time.Time
}

// NewGenerator creates a Generator for cfg reading templates from source.
func NewGenerator(cfg *Config, source TemplateSource) *Generator {
	return &Generator{
		cfg:    cfg,
		source: source,
		engine: cfg.Engine(),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for migration timestamps.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Repository renders the repository and its model.
func (g *Generator) Repository() ([]GeneratedFile, error) {
	relationships := ModelRelationships(g.cfg.Columns, g.cfg.Relationships, g.cfg.Paths.AppNamespace)
	model := g.engine.With(NewConfigMap(
		"_relationships_", RelationshipMethods(relationships),
		"_fillable_", FillableColumns(g.cfg.Columns),
	))

	repo, err := g.create(g.engine, "Repository.tmpl", filepath.Join(g.cfg.Value("_path_repository_"), "_camel_case_Repository.php"))
	if err != nil {
		return nil, err
	}
	m, err := g.create(model, "Model.tmpl", filepath.Join(g.cfg.Value("_path_model_"), "_camel_case_.php"))
	if err != nil {
		return nil, err
	}
	return []GeneratedFile{repo, m}, nil
}

// Service renders the service class.
func (g *Generator) Service() ([]GeneratedFile, error) {
	return g.single(g.engine, "Service.tmpl", filepath.Join(g.cfg.Value("_path_service_"), "_camel_case_Service.php"))
}

// Request renders the form request. Lumen has no form requests.
func (g *Generator) Request() ([]GeneratedFile, error) {
	if g.cfg.Framework == FrameworkLumen {
		return nil, nil
	}
	engine := g.engine.With(NewConfigMap("_validation_rules_", ValidationRules(g.cfg.Columns)))
	return g.single(engine, "Request.tmpl", filepath.Join(g.cfg.Value("_path_request_"), "_camel_case_Request.php"))
}

// Controller renders the web controller.
func (g *Generator) Controller() ([]GeneratedFile, error) {
	return g.single(g.engine, "Controller.tmpl", filepath.Join(g.cfg.Value("_path_controller_"), "_ucCamel_casePlural_Controller.php"))
}

// Views renders the view pages, preferring the UI-specific template
// directory when the source has one.
func (g *Generator) Views() ([]GeneratedFile, error) {
	dir := g.ViewsDir()
	out := filepath.Join(g.cfg.Value("_path_views_"), "_lower_casePlural_")

	files := make([]GeneratedFile, 0, len(viewPages))
	for _, page := range viewPages {
		f, err := g.create(g.engine, dir+"/"+page+".tmpl", filepath.Join(out, page+".blade.php"))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ViewsDir returns the template directory the views are read from.
func (g *Generator) ViewsDir() string {
	var dir string
	switch g.cfg.UI {
	case UIBootstrap:
		dir = "BootstrapViews"
	case UISemantic:
		dir = "SemanticViews"
	}
	if dir != "" && g.source.HasDir(dir) {
		return dir
	}
	return "Views"
}

// Routes renders the route definitions appended to the routes file, wrapped
// in the route group when sectioned.
func (g *Generator) Routes() ([]GeneratedFile, error) {
	f, err := g.appended(g.engine, "Routes.tmpl", g.cfg.Value("_path_routes_"))
	if err != nil {
		return nil, err
	}
	f.FinalContent = g.cfg.Value("routes_prefix") + f.FinalContent + g.cfg.Value("routes_suffix")
	return []GeneratedFile{f}, nil
}

// Facade renders the service facade.
func (g *Generator) Facade() ([]GeneratedFile, error) {
	return g.single(g.engine, "Facade.tmpl", filepath.Join(g.cfg.Value("_path_facade_"), "_camel_case_ServiceFacade.php"))
}

// Tests renders the test suite matching the enabled artifacts.
func (g *Generator) Tests() ([]GeneratedFile, error) {
	type test struct{ template, name string }
	tests := []test{
		{"Tests/RepositoryTest.tmpl", "_camel_case_RepositoryTest.php"},
		{"Tests/ServiceTest.tmpl", "_camel_case_ServiceTest.php"},
	}
	if g.cfg.Options.AppBased() {
		tests = append(tests, test{"Tests/ControllerTest.tmpl", "_camel_case_AcceptanceTest.php"})
	}
	if g.cfg.Options.WantsAPI() {
		tests = append(tests, test{"Tests/ApiTest.tmpl", "_camel_case_ApiTest.php"})
	}

	files := make([]GeneratedFile, 0, len(tests))
	for _, t := range tests {
		f, err := g.create(g.engine, t.template, filepath.Join(g.cfg.Value("_path_tests_"), t.name))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Factory renders the model factory definition appended to the factory file.
func (g *Generator) Factory() ([]GeneratedFile, error) {
	engine := g.engine.With(NewConfigMap("_factory_fields_", FactoryFields(g.cfg.Columns)))
	f, err := g.appended(engine, "Factory.tmpl", g.cfg.Value("_path_factory_"))
	if err != nil {
		return nil, err
	}
	return []GeneratedFile{f}, nil
}

// API renders the API controller and the routes appended to the API routes
// file.
func (g *Generator) API() ([]GeneratedFile, error) {
	controller, err := g.create(g.engine, "ApiController.tmpl", filepath.Join(g.cfg.Value("_path_api_controller_"), "_ucCamel_casePlural_Controller.php"))
	if err != nil {
		return nil, err
	}
	routes, err := g.appended(g.engine, "ApiRoutes.tmpl", g.cfg.Value("_path_api_routes_"))
	if err != nil {
		return nil, err
	}
	return []GeneratedFile{controller, routes}, nil
}

// Migration renders a timestamped create-table migration. Without a schema
// the table only gets its primary key and timestamps.
func (g *Generator) Migration() ([]GeneratedFile, error) {
	columns := DefaultColumnDeclarations()
	if len(g.cfg.Columns) > 0 {
		columns = ColumnDeclarations(g.cfg.Columns)
	}
	engine := g.engine.With(NewConfigMap(
		"_migration_class_", MigrationClass(g.cfg.Identity.TableName),
		"_schema_columns_", columns,
	))

	name := g.now().Format(MigrationTimeLayout) + "_create__table_name__table.php"
	return g.single(engine, "Migration.tmpl", filepath.Join(g.cfg.Value("_path_migrations_"), name))
}

func (g *Generator) single(engine *Engine, name, outputPath string) ([]GeneratedFile, error) {
	f, err := g.create(engine, name, outputPath)
	if err != nil {
		return nil, err
	}
	return []GeneratedFile{f}, nil
}

func (g *Generator) create(engine *Engine, name, outputPath string) (GeneratedFile, error) {
	return g.render(engine, name, outputPath, OperationCreate)
}

func (g *Generator) appended(engine *Engine, name, outputPath string) (GeneratedFile, error) {
	return g.render(engine, name, outputPath, OperationAppend)
}

func (g *Generator) render(engine *Engine, name, outputPath string, op Operation) (GeneratedFile, error) {
	t, err := g.source.ReadTemplate(name)
	if err != nil {
		var tre *TemplateResolutionError
		if errors.As(err, &tre) {
			return GeneratedFile{}, err
		}
		return GeneratedFile{}, &TemplateResolutionError{Template: name, Cause: err}
	}

	artifact, err := engine.Render(t, outputPath)
	if err != nil {
		return GeneratedFile{}, err
	}
	return GeneratedFile{RenderedArtifact: artifact, Operation: op, Template: name}, nil
}
