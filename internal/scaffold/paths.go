package scaffold

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Paths locates the target application.
type Paths struct {
	BasePath     string // project root
	AppPath      string // application sources, default <base>/app
	AppNamespace string // root namespace with trailing backslash, default App\
}

func (p Paths) withDefaults() Paths {
	if p.AppPath == "" {
		p.AppPath = filepath.Join(p.BasePath, "app")
	}
	if p.AppNamespace == "" {
		p.AppNamespace = `App\`
	}
	if !strings.HasSuffix(p.AppNamespace, `\`) {
		p.AppNamespace += `\`
	}
	return p
}

// Input is the raw invocation: the table argument plus declarative options.
type Input struct {
	Table          string
	Separator      string
	Framework      string
	UI             string
	Options        Options
	Schema         string
	Relationships  string
	TemplateSource string
}

// Overlay holds configuration-file overrides for each mode.
type Overlay struct {
	Single    ConfigMap
	Sectioned ConfigMap
}

// Config is a fully resolved invocation.
type Config struct {
	Framework     Framework
	UI            string
	Identity      Identity
	Options       Options
	Paths         Paths
	Schema        string
	Columns       []ColumnSpec
	Relationships []RelationshipSpec
	Values        ConfigMap
}

// Value returns a resolved config value.
func (c *Config) Value(key string) string {
	return c.Values.Value(key)
}

// Sectioned reports whether the table argument carried a section.
func (c *Config) Sectioned() bool {
	return c.Identity.Section.Present
}

// Engine returns a placeholder engine over the resolved values and the
// compound tokens of the identity.
func (c *Config) Engine() *Engine {
	source, literal := NewConfigMap(), CompoundTokens(c.Identity)
	for _, key := range c.Values.Keys() {
		if literalKeys[key] {
			literal = literal.With(key, c.Value(key))
		} else {
			source = source.With(key, c.Value(key))
		}
	}
	return NewEngine(source).With(literal)
}

// literalKeys carry text taken from the invocation. Their values are
// substituted verbatim and never scanned for tokens.
var literalKeys = map[string]bool{
	"_table_name_":         true,
	"_lower_case_":         true,
	"_lower_casePlural_":   true,
	"_camel_case_":         true,
	"_camel_casePlural_":   true,
	"_ucCamel_casePlural_": true,
	"schema":               true,
	"relationships":        true,
}

// sectionDirectoryKeys are created before generation in sectioned mode.
var sectionDirectoryKeys = []string{
	"_path_repository_",
	"_path_model_",
	"_path_controller_",
	"_path_api_controller_",
	"_path_views_",
	"_path_request_",
}

// SectionDirectories lists the output directories that must exist before a
// sectioned run writes anything. It is empty in unsectioned mode.
func (c *Config) SectionDirectories() []string {
	if !c.Sectioned() {
		return nil
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, key := range sectionDirectoryKeys {
		dir := c.Value(key)
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// ParseFramework normalises a framework name; empty means Laravel.
func ParseFramework(name string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "laravel":
		return FrameworkLaravel, nil
	case "lumen":
		return FrameworkLumen, nil
	default:
		return "", &ConfigurationError{Input: name, Message: "framework must be one of: laravel, lumen"}
	}
}

// Resolve validates the input, parses the schema and relationship options and
// builds the final config map. It performs no I/O.
func Resolve(in Input, paths Paths, overlay Overlay) (*Config, error) {
	framework, err := ParseFramework(in.Framework)
	if err != nil {
		return nil, err
	}

	switch in.UI {
	case "", UIBootstrap, UISemantic:
	default:
		return nil, &ConfigurationError{Input: in.UI, Message: "ui must be one of: bootstrap, semantic"}
	}

	if strings.TrimSpace(in.Schema) != "" && !in.Options.Migration {
		return nil, &ConfigurationError{Input: "--schema", Message: "a schema can only be used together with --migration"}
	}

	identity, err := ResolveIdentity(in.Table, in.Separator)
	if err != nil {
		return nil, err
	}

	columns, err := ParseSchema(in.Schema)
	if err != nil {
		return nil, err
	}

	relationships, err := ParseRelationships(in.Relationships)
	if err != nil {
		return nil, err
	}

	paths = paths.withDefaults()

	var values ConfigMap
	if identity.Section.Present {
		values = sectionedConfig(identity, paths, framework).Merge(overlay.Sectioned)
	} else {
		values = singleConfig(identity, paths, framework).Merge(overlay.Single)
	}

	values = anchorPaths(values, paths.BasePath)

	values = values.
		With("schema", in.Schema).
		With("relationships", in.Relationships)
	if in.TemplateSource != "" {
		values = values.With("template_source", in.TemplateSource)
	}

	values, err = substituteCompoundTokens(values, identity)
	if err != nil {
		return nil, err
	}

	return &Config{
		Framework:     framework,
		UI:            in.UI,
		Identity:      identity,
		Options:       in.Options,
		Paths:         paths,
		Schema:        in.Schema,
		Columns:       columns,
		Relationships: relationships,
		Values:        values,
	}, nil
}

// substituteCompoundTokens resolves _table_ and the section tokens in every
// value and rejects any value that still carries one.
func substituteCompoundTokens(values ConfigMap, id Identity) (ConfigMap, error) {
	engine := NewEngine(CompoundTokens(id))
	out := NewConfigMap()
	for _, key := range values.Keys() {
		if literalKeys[key] {
			out = out.With(key, values.Value(key))
			continue
		}
		v, err := engine.Apply(values.Value(key))
		if err != nil {
			return ConfigMap{}, err
		}
		for _, token := range []string{TokenSectionLowerCase, TokenSection, TokenTable} {
			if strings.Contains(v, token) {
				return ConfigMap{}, &ConfigurationError{
					Input:   key,
					Message: fmt.Sprintf("%s is unresolved; section placeholders need a <section>_<table> argument", token),
				}
			}
		}
		out = out.With(key, v)
	}
	return out, nil
}

// anchorPaths joins relative _path_*_ values onto the project root so
// overrides never depend on the working directory.
func anchorPaths(values ConfigMap, base string) ConfigMap {
	out := values
	for _, key := range values.Keys() {
		v := values.Value(key)
		if !strings.HasPrefix(key, "_path_") || v == "" || filepath.IsAbs(v) {
			continue
		}
		out = out.With(key, filepath.Join(base, v))
	}
	return out
}

// directory describes one output directory and its namespace.
type directory struct {
	pathKey      string
	namespaceKey string
	underBase    bool     // rooted at the project root instead of the app root
	root         []string // category root below the app or project root
	entityLeaf   bool     // one directory per entity below the section
	lowerSection bool     // section segment is lower-case (views)
}

// layout is shared by both builders so sectioned and unsectioned maps have
// the same keys and the section always lands directly under the category root.
var layout = []directory{
	{pathKey: "_path_facade_", namespaceKey: "_namespace_facade_", root: []string{"Facades"}},
	{pathKey: "_path_service_", namespaceKey: "_namespace_services_", root: []string{"Services"}},
	{pathKey: "_path_repository_", namespaceKey: "_namespace_repository_", root: []string{"Repositories"}, entityLeaf: true},
	{pathKey: "_path_model_", namespaceKey: "_namespace_model_", root: []string{"Repositories"}, entityLeaf: true},
	{pathKey: "_path_controller_", namespaceKey: "_namespace_controller_", root: []string{"Http", "Controllers"}},
	{pathKey: "_path_api_controller_", namespaceKey: "_namespace_api_controller_", root: []string{"Http", "Controllers", "Api"}},
	{pathKey: "_path_request_", namespaceKey: "_namespace_request_", root: []string{"Http", "Requests"}},
	{pathKey: "_path_views_", underBase: true, root: []string{"resources", "views"}, lowerSection: true},
	{pathKey: "_path_tests_", underBase: true, root: []string{"tests"}},
}

// singleConfig builds the unsectioned map: flat paths and namespaces, no
// route group.
func singleConfig(id Identity, p Paths, fw Framework) ConfigMap {
	m := NewConfigMap(
		"framework", string(fw),
		"template_source", "",
		"_sectionPrefix_", "",
		"_sectionTablePrefix_", "",
		"_sectionRoutePrefix_", "",
		"_sectionNamespace_", "",
	)
	m = m.Merge(layoutConfig(p, "", ""))
	m = m.Merge(sharedConfig(p))
	m = m.Merge(NewConfigMap(
		"routes_prefix", "",
		"routes_suffix", "",
	))
	return m.Merge(namingConfig(id))
}

// sectionedConfig builds the sectioned map: a section segment in every
// directory and namespace and a route group wrapper.
func sectionedConfig(id Identity, p Paths, fw Framework) ConfigMap {
	m := NewConfigMap(
		"framework", string(fw),
		"template_source", "",
		"_sectionPrefix_", TokenSectionLowerCase+".",
		"_sectionTablePrefix_", TokenSectionLowerCase+"_",
		"_sectionRoutePrefix_", TokenSectionLowerCase+"/",
		"_sectionNamespace_", TokenSection+`\`,
	)
	m = m.Merge(layoutConfig(p, TokenSection, TokenSectionLowerCase))
	m = m.Merge(sharedConfig(p))

	prefix, suffix := routeGroup(fw, p)
	m = m.Merge(NewConfigMap(
		"routes_prefix", prefix,
		"routes_suffix", suffix,
	))
	return m.Merge(namingConfig(id))
}

func layoutConfig(p Paths, section, sectionLower string) ConfigMap {
	m := NewConfigMap()
	for _, d := range layout {
		root := p.AppPath
		if d.underBase {
			root = p.BasePath
		}
		segments := append([]string{root}, d.root...)
		nsSegments := append([]string(nil), d.root...)

		switch {
		case section == "":
		case d.lowerSection:
			segments = append(segments, sectionLower)
		default:
			segments = append(segments, section)
			nsSegments = append(nsSegments, section)
		}
		if d.entityLeaf {
			segments = append(segments, TokenTable)
			nsSegments = append(nsSegments, TokenTable)
		}

		m = m.With(d.pathKey, filepath.Join(segments...))
		if d.namespaceKey != "" {
			m = m.With(d.namespaceKey, p.AppNamespace+strings.Join(nsSegments, `\`))
		}
	}
	return m
}

// sharedConfig holds the single files and the migrations directory that every
// section writes into.
func sharedConfig(p Paths) ConfigMap {
	return NewConfigMap(
		"_path_routes_", filepath.Join(p.AppPath, "Http", "routes.php"),
		"_path_api_routes_", filepath.Join(p.AppPath, "Http", "api-routes.php"),
		"_path_migrations_", filepath.Join(p.BasePath, "database", "migrations"),
		"_path_factory_", filepath.Join(p.BasePath, "database", "factories", "ModelFactory.php"),
		"_app_namespace_", p.AppNamespace,
	)
}

func routeGroup(fw Framework, p Paths) (prefix, suffix string) {
	suffix = "\n});\n"
	if fw == FrameworkLumen {
		namespace := p.AppNamespace + `Http\Controllers\` + TokenSection
		prefix = "\n\n$app->group(['namespace' => '" + namespace + "', 'prefix' => '" + TokenSectionLowerCase + "', 'as' => '" + TokenSectionLowerCase + ".'], function () use ($app) {\n"
		return prefix, suffix
	}
	prefix = "\n\nRoute::group(['namespace' => '" + TokenSection + "', 'prefix' => '" + TokenSectionLowerCase + "', 'as' => '" + TokenSectionLowerCase + ".', 'middleware' => ['web']], function () {\n"
	return prefix, suffix
}

func namingConfig(id Identity) ConfigMap {
	v := id.Entity
	return NewConfigMap(
		"_table_name_", id.TableName,
		"_lower_case_", v.SingularLower,
		"_lower_casePlural_", v.PluralLower,
		"_camel_case_", v.SingularUpper,
		"_camel_casePlural_", v.CamelPlural,
		"_ucCamel_casePlural_", v.UpperCamelPlural,
	)
}
