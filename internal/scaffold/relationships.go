package scaffold

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// ParseRelationships parses the --relationships DSL.
// Format: "hasOne|App\Comment|comment,belongsTo|App\User|user_id"
//
// Kinds are not checked against a fixed set; templates treat unknown kinds as
// opaque method names.
func ParseRelationships(relationships string) ([]RelationshipSpec, error) {
	if strings.TrimSpace(relationships) == "" {
		return nil, nil
	}

	var specs []RelationshipSpec
	for _, part := range strings.Split(relationships, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}

		segments := strings.Split(entry, "|")
		if len(segments) != 3 {
			return nil, &InvalidRelationshipError{Token: entry, Message: "expected 'kind|TargetEntity|column'"}
		}
		for i := range segments {
			segments[i] = strings.TrimSpace(segments[i])
			if segments[i] == "" {
				return nil, &InvalidRelationshipError{Token: entry, Message: "kind, target entity and column must all be non-empty"}
			}
		}

		columnBase := strings.TrimSuffix(segments[2], foreignKeyHint)
		if columnBase == "" {
			return nil, &InvalidRelationshipError{Token: entry, Message: "column must name more than the _id suffix"}
		}

		specs = append(specs, RelationshipSpec{
			Kind:         RelationshipKind(segments[0]),
			TargetEntity: segments[1],
			ColumnBase:   columnBase,
		})
	}

	return specs, nil
}

// ForeignKey returns the relationship's foreign key column: "comment_id".
func (r RelationshipSpec) ForeignKey() string {
	return r.ColumnBase + foreignKeyHint
}

// MethodName returns the model accessor for the relationship; to-many kinds
// get a plural name.
func (r RelationshipSpec) MethodName() string {
	name := inflect.CamelizeDownFirst(r.ColumnBase)
	switch r.Kind {
	case HasMany, BelongsToMany:
		return inflect.Pluralize(name)
	default:
		return name
	}
}

// TargetClass returns the fully qualified target class with a leading
// backslash: "\App\Comment".
func (r RelationshipSpec) TargetClass() string {
	return `\` + strings.TrimPrefix(r.TargetEntity, `\`)
}
