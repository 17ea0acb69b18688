package scaffold

import (
	"regexp"
	"sort"
	"strings"
)

// Compound tokens resolved from the identity rather than from a config key.
const (
	TokenTable            = "_table_"
	TokenSection          = "_section_"
	TokenSectionLowerCase = "_sectionLowerCase_"
)

// Engine substitutes placeholder tokens. It never touches storage.
//
// Values of the source map may reference other tokens and are resolved once,
// when the engine is built. Literal values are substituted verbatim. Apply
// makes a single pass, so substituted text is never scanned again.
type Engine struct {
	source   ConfigMap
	literals ConfigMap
	values   map[string]string
	errs     map[string]error
	pattern  *regexp.Regexp
}

// NewEngine builds an engine over every placeholder-shaped key of values.
// Tokens are matched longest first, so a key never matches as a prefix of a
// longer key at the same position.
func NewEngine(values ConfigMap) *Engine {
	return newEngine(values, NewConfigMap())
}

func newEngine(source, literals ConfigMap) *Engine {
	e := &Engine{
		source:   source,
		literals: literals,
		values:   make(map[string]string),
		errs:     make(map[string]error),
	}

	raw := make(map[string]string)
	for _, k := range source.Keys() {
		if IsPlaceholderKey(k) {
			raw[k] = source.Value(k)
		}
	}
	for _, k := range literals.Keys() {
		if IsPlaceholderKey(k) {
			delete(raw, k)
			e.values[k] = literals.Value(k)
		}
	}

	tokens := make([]string, 0, len(raw)+len(e.values))
	for k := range raw {
		tokens = append(tokens, k)
	}
	for k := range e.values {
		tokens = append(tokens, k)
	}
	if len(tokens) == 0 {
		return e
	}

	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	e.pattern = regexp.MustCompile(strings.Join(quoted, "|"))

	visiting := make(map[string]bool)
	for _, k := range tokens {
		if _, ok := raw[k]; ok {
			e.resolve(k, raw, visiting)
		}
	}
	return e
}

// resolve expands the raw value of key, resolving each referenced token
// first. A key reached again while it is being resolved is a cycle.
func (e *Engine) resolve(key string, raw map[string]string, visiting map[string]bool) (string, error) {
	if v, ok := e.values[key]; ok {
		return v, nil
	}
	if err, ok := e.errs[key]; ok {
		return "", err
	}
	if visiting[key] {
		return "", &ConfigurationError{
			Input:   truncate(raw[key], 60),
			Message: "placeholder substitution does not settle; " + key + " references itself",
		}
	}

	visiting[key] = true
	var resolveErr error
	v := e.pattern.ReplaceAllStringFunc(raw[key], func(token string) string {
		if resolveErr != nil {
			return token
		}
		if _, ok := raw[token]; !ok {
			return e.values[token]
		}
		out, err := e.resolve(token, raw, visiting)
		if err != nil {
			resolveErr = err
			return token
		}
		return out
	})
	delete(visiting, key)

	if resolveErr != nil {
		e.errs[key] = resolveErr
		return "", resolveErr
	}
	e.values[key] = v
	return v, nil
}

// CompoundTokens returns _table_ and, when a section is present, _section_
// and _sectionLowerCase_ for id.
func CompoundTokens(id Identity) ConfigMap {
	m := NewConfigMap(TokenTable, id.Entity.SingularUpper)
	if id.Section.Present {
		m = m.Merge(NewConfigMap(
			TokenSection, id.Section.Upper(),
			TokenSectionLowerCase, id.Section.Lower(),
		))
	}
	return m
}

// With returns a new engine extended by extra. The values of extra are
// literal: tokens inside them are left as they are.
func (e *Engine) With(extra ConfigMap) *Engine {
	return newEngine(e.source, e.literals.Merge(extra))
}

// Apply replaces every token in s with its resolved value in a single pass.
func (e *Engine) Apply(s string) (string, error) {
	if e.pattern == nil {
		return s, nil
	}
	var applyErr error
	out := e.pattern.ReplaceAllStringFunc(s, func(token string) string {
		if err, ok := e.errs[token]; ok {
			if applyErr == nil {
				applyErr = err
			}
			return token
		}
		return e.values[token]
	})
	if applyErr != nil {
		return "", applyErr
	}
	return out, nil
}

// Render substitutes both the template body and its output path.
func (e *Engine) Render(t Template, outputPath string) (RenderedArtifact, error) {
	content, err := e.Apply(t.RawContent)
	if err != nil {
		return RenderedArtifact{}, err
	}
	out, err := e.Apply(outputPath)
	if err != nil {
		return RenderedArtifact{}, err
	}
	return RenderedArtifact{OutputPath: out, FinalContent: content}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
