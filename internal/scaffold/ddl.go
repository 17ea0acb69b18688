package scaffold

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
)

const (
	migrationIndent = "            "
	methodIndent    = "    "
	entryIndent     = "        "
)

var integerTypes = map[ColumnType]bool{
	"integer":       true,
	"bigInteger":    true,
	"mediumInteger": true,
	"smallInteger":  true,
	"tinyInteger":   true,
}

// ColumnDeclarations renders one migration statement per column, in order,
// followed by the timestamps columns.
func ColumnDeclarations(columns []ColumnSpec) string {
	lines := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		lines = append(lines, columnDeclaration(c))
	}
	lines = append(lines, "$table->timestamps();")
	return strings.Join(lines, "\n"+migrationIndent)
}

func columnDeclaration(c ColumnSpec) string {
	var b strings.Builder
	b.WriteString("$table->")
	b.WriteString(string(c.Type))
	if c.Type == "enum" {
		fmt.Fprintf(&b, "('%s', [])", c.Name)
	} else {
		fmt.Fprintf(&b, "('%s')", c.Name)
	}
	if c.IsForeignKeyHint {
		if integerTypes[c.Type] {
			b.WriteString("->unsigned()")
		}
		b.WriteString("->index()")
	}
	if c.Nullable {
		b.WriteString("->nullable()")
	}
	b.WriteString(";")
	return b.String()
}

// DefaultColumnDeclarations is used when a migration is generated without a
// schema.
func DefaultColumnDeclarations() string {
	return ColumnDeclarations([]ColumnSpec{{Name: primaryKeyName, Type: "increments"}})
}

// ModelRelationships returns the explicit relationships plus a belongsTo for
// every foreign-key-hinted column no explicit relationship covers.
func ModelRelationships(columns []ColumnSpec, explicit []RelationshipSpec, appNamespace string) []RelationshipSpec {
	covered := make(map[string]bool, len(explicit))
	for _, r := range explicit {
		covered[r.ForeignKey()] = true
	}

	all := append([]RelationshipSpec(nil), explicit...)
	for _, c := range columns {
		if !c.IsForeignKeyHint || covered[c.Name] {
			continue
		}
		base := strings.TrimSuffix(c.Name, foreignKeyHint)
		all = append(all, RelationshipSpec{
			Kind:         BelongsTo,
			TargetEntity: appNamespace + inflect.Camelize(base),
			ColumnBase:   base,
		})
	}
	return all
}

// RelationshipMethods renders model accessor methods, one per relationship.
func RelationshipMethods(relationships []RelationshipSpec) string {
	var b strings.Builder
	for _, r := range relationships {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%spublic function %s()\n", methodIndent, r.MethodName())
		fmt.Fprintf(&b, "%s{\n", methodIndent)
		if r.Kind == BelongsTo {
			fmt.Fprintf(&b, "%sreturn $this->%s(%s::class, '%s');\n", entryIndent, r.Kind, r.TargetClass(), r.ForeignKey())
		} else {
			fmt.Fprintf(&b, "%sreturn $this->%s(%s::class);\n", entryIndent, r.Kind, r.TargetClass())
		}
		fmt.Fprintf(&b, "%s}\n", methodIndent)
	}
	return b.String()
}

// FillableColumns renders the model's mass-assignable column list.
func FillableColumns(columns []ColumnSpec) string {
	var names []string
	for _, c := range columns {
		if c.Name == primaryKeyName {
			continue
		}
		names = append(names, "'"+c.Name+"'")
	}
	return strings.Join(names, ",\n"+entryIndent)
}

// FactoryFields renders the model-factory attribute array entries.
func FactoryFields(columns []ColumnSpec) string {
	if len(columns) == 0 {
		return "'id' => 1,"
	}
	lines := make([]string, 0, len(columns))
	for _, c := range columns {
		lines = append(lines, fmt.Sprintf("'%s' => %s,", c.Name, fakeValue(c)))
	}
	return strings.Join(lines, "\n"+entryIndent)
}

func fakeValue(c ColumnSpec) string {
	if c.IsForeignKeyHint || c.Name == primaryKeyName {
		return "1"
	}
	switch c.Type {
	case "bigIncrements", "increments":
		return "1"
	case "text", "mediumText", "longText":
		return "$faker->paragraph"
	case "integer", "bigInteger", "mediumInteger", "smallInteger", "tinyInteger":
		return "$faker->randomNumber()"
	case "boolean":
		return "$faker->boolean"
	case "date":
		return "$faker->date()"
	case "dateTime", "timestamp":
		return "$faker->dateTime()"
	case "time":
		return "$faker->time()"
	case "decimal", "double", "float":
		return "$faker->randomFloat(2)"
	case "uuid":
		return "$faker->uuid"
	case "ipAddress":
		return "$faker->ipv4"
	case "macAddress":
		return "$faker->macAddress"
	case "json", "jsonb":
		return "json_encode([])"
	case "char":
		return "$faker->randomLetter"
	case "binary":
		return "$faker->sha256"
	case "enum", "morphs":
		return "null"
	default:
		return "$faker->word"
	}
}

// ValidationRules renders request validation rules for the declared columns.
func ValidationRules(columns []ColumnSpec) string {
	var lines []string
	for _, c := range columns {
		if c.Name == primaryKeyName || c.Type == "increments" || c.Type == "bigIncrements" {
			continue
		}
		rule := "required"
		if c.Nullable {
			rule = "nullable"
		}
		lines = append(lines, fmt.Sprintf("'%s' => '%s',", c.Name, rule))
	}
	return strings.Join(lines, "\n"+entryIndent+methodIndent)
}

// MigrationClass returns the migration class name for a table:
// "shop_products" -> "CreateShopProductsTable".
func MigrationClass(tableName string) string {
	return "Create" + inflect.Camelize(tableName) + "Table"
}
