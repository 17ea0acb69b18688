package scaffold

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-openapi/inflect"
)

// DefaultSeparator splits a table argument into section and table.
const DefaultSeparator = "_"

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Variants holds the case variants derived from a table name.
type Variants struct {
	Raw              string // as given: "blog_posts"
	SingularUpper    string // "BlogPost"
	SingularLower    string // "blog_post"
	PluralLower      string // "blog_posts"
	CamelSingular    string // "blogPost"
	CamelPlural      string // "blogPosts"
	UpperCamelPlural string // "BlogPosts"
}

// NewVariants derives every case variant of a table name.
func NewVariants(raw string) Variants {
	singular := inflect.Singularize(inflect.Underscore(raw))
	lower := strings.ToLower(singular)
	camel := inflect.CamelizeDownFirst(singular)
	plural := inflect.Pluralize(lower)

	return Variants{
		Raw:              raw,
		SingularUpper:    inflect.Camelize(singular),
		SingularLower:    lower,
		PluralLower:      plural,
		CamelSingular:    camel,
		CamelPlural:      inflect.Pluralize(camel),
		UpperCamelPlural: inflect.Camelize(plural),
	}
}

// Section is the optional sub-module prefix of a table argument.
type Section struct {
	Name    string
	Present bool
}

// Upper returns the section as used in class paths and namespaces: "Shop".
func (s Section) Upper() string {
	if !s.Present {
		return ""
	}
	return inflect.Camelize(s.Name)
}

// Lower returns the section as used in view paths and route prefixes: "shop".
func (s Section) Lower() string {
	if !s.Present {
		return ""
	}
	return strings.ToLower(s.Name)
}

// Identity is the resolved naming of one invocation.
type Identity struct {
	Raw       string
	Section   Section
	Entity    Variants
	TableName string // database table: "shop_products"
}

// ResolveIdentity splits raw on separator into an optional section and a
// table and derives the entity variants. A raw value containing the
// separator must yield exactly two non-empty segments.
func ResolveIdentity(raw, separator string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, &ConfigurationError{Message: "table name is required"}
	}
	if separator == "" {
		separator = DefaultSeparator
	}

	if !strings.Contains(raw, separator) {
		if !identifierPattern.MatchString(raw) {
			return Identity{}, &ConfigurationError{Input: raw, Message: "table name must start with a letter and contain only letters, digits, '_' or '-'"}
		}
		entity := NewVariants(raw)
		return Identity{
			Raw:       raw,
			Entity:    entity,
			TableName: entity.PluralLower,
		}, nil
	}

	parts := strings.Split(raw, separator)
	if len(parts) != 2 {
		return Identity{}, &ConfigurationError{
			Input:   raw,
			Message: fmt.Sprintf("expected <section>%s<table> with exactly one %q separator, got %d segments", separator, separator, len(parts)),
		}
	}
	sectionName, table := parts[0], parts[1]
	if sectionName == "" {
		return Identity{}, &ConfigurationError{Input: raw, Message: "section segment before " + quote(separator) + " is empty"}
	}
	if table == "" {
		return Identity{}, &ConfigurationError{Input: raw, Message: "table segment after " + quote(separator) + " is empty"}
	}
	for _, segment := range parts {
		if !identifierPattern.MatchString(segment) {
			return Identity{}, &ConfigurationError{Input: raw, Message: fmt.Sprintf("segment %q must start with a letter and contain only letters, digits, '_' or '-'", segment)}
		}
	}

	entity := NewVariants(table)
	return Identity{
		Raw:       raw,
		Section:   Section{Name: sectionName, Present: true},
		Entity:    entity,
		TableName: inflect.Pluralize(strings.ToLower(sectionName + "_" + entity.SingularLower)),
	}, nil
}
