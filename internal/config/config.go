// Package config loads the optional crudmaker project configuration.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/example/crudmaker/internal/scaffold"
)

// FileNames are the config files Discover looks for, in order.
var FileNames = []string{"crudmaker.toml", "crudmaker.yaml", "crudmaker.yml", "crudmaker.json"}

// Config represents a crudmaker project configuration.
type Config struct {
	Framework        string            `toml:"framework,omitempty" yaml:"framework,omitempty" json:"framework,omitempty"`
	TemplateSource   string            `toml:"template_source,omitempty" yaml:"template_source,omitempty" json:"template_source,omitempty"`
	AppPath          string            `toml:"app_path,omitempty" yaml:"app_path,omitempty" json:"app_path,omitempty"`
	AppNamespace     string            `toml:"app_namespace,omitempty" yaml:"app_namespace,omitempty" json:"app_namespace,omitempty"`
	SectionSeparator string            `toml:"section_separator,omitempty" yaml:"section_separator,omitempty" json:"section_separator,omitempty"`
	Journal          string            `toml:"journal,omitempty" yaml:"journal,omitempty" json:"journal,omitempty"`
	Single           map[string]string `toml:"single,omitempty" yaml:"single,omitempty" json:"single,omitempty"`
	Sectioned        map[string]string `toml:"sectioned,omitempty" yaml:"sectioned,omitempty" json:"sectioned,omitempty"`

	path string
}

// Load reads a config file, choosing the decoder from its extension.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(data, &cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".json":
		err = decodeJSON(data, &cfg)
	default:
		return nil, &scaffold.ConfigurationError{Input: path, Message: "config file must be .toml, .yaml, .yml or .json"}
	}
	if err != nil {
		return nil, &scaffold.ConfigurationError{Input: path, Message: err.Error()}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	cfg.path = abs

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Discover loads the first config file found in dir. It returns an empty
// Config when there is none.
func Discover(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return &Config{}, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Framework != "" {
		if _, err := scaffold.ParseFramework(c.Framework); err != nil {
			return err
		}
	}
	for name, table := range map[string]map[string]string{"single": c.Single, "sectioned": c.Sectioned} {
		for key := range table {
			if strings.TrimSpace(key) == "" {
				return &scaffold.ConfigurationError{Input: name, Message: "override keys must not be empty"}
			}
		}
	}
	return nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// ResolvePath makes p absolute relative to the config file's directory, or
// to fallback when the config was not loaded from a file.
func (c *Config) ResolvePath(p, fallback string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	dir := fallback
	if c.path != "" {
		dir = filepath.Dir(c.path)
	}
	return filepath.Join(dir, p)
}

// Overlay returns the single and sectioned override tables.
func (c *Config) Overlay() scaffold.Overlay {
	return scaffold.Overlay{
		Single:    scaffold.ConfigMapFrom(c.Single),
		Sectioned: scaffold.ConfigMapFrom(c.Sectioned),
	}
}

// Starter returns the config written by publish.
func Starter(framework scaffold.Framework, templateDir string) *Config {
	return &Config{
		Framework:        strings.ToLower(string(framework)),
		TemplateSource:   templateDir,
		SectionSeparator: scaffold.DefaultSeparator,
	}
}

// Marshal encodes cfg as commented TOML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# crudmaker configuration\n")
	buf.WriteString("# [single] and [sectioned] override generated placeholder values, e.g.\n")
	buf.WriteString("# _path_tests_ = \"tests/Unit\"\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return buf.Bytes(), nil
}

// composerFile is the part of composer.json needed to find the app namespace.
type composerFile struct {
	Autoload struct {
		PSR4 map[string]any `json:"psr-4"`
	} `json:"autoload"`
}

// DetectNamespace returns the PSR-4 namespace mapped to app/ in
// <base>/composer.json, or "" when there is no such mapping.
func DetectNamespace(base string) (string, error) {
	data, err := os.ReadFile(filepath.Join(base, "composer.json"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read composer.json: %w", err)
	}

	var composer composerFile
	if err := json.Unmarshal(data, &composer); err != nil {
		return "", fmt.Errorf("failed to parse composer.json: %w", err)
	}

	namespaces := make([]string, 0, len(composer.Autoload.PSR4))
	for ns := range composer.Autoload.PSR4 {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		for _, dir := range psr4Dirs(composer.Autoload.PSR4[ns]) {
			if strings.Trim(filepath.ToSlash(dir), "/") == "app" {
				return ns, nil
			}
		}
	}
	return "", nil
}

// psr4Dirs handles both "App\\": "app/" and "App\\": ["app/", "lib/"].
func psr4Dirs(v any) []string {
	switch dirs := v.(type) {
	case string:
		return []string{dirs}
	case []any:
		out := make([]string, 0, len(dirs))
		for _, d := range dirs {
			if s, ok := d.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
