package scaffold

import (
	"fmt"
	"strings"
	"unicode"
)

// ColumnTypes is the whitelist of migration column types, in the order they
// are listed to users.
var ColumnTypes = []ColumnType{
	"bigIncrements",
	"increments",
	"bigInteger",
	"binary",
	"boolean",
	"char",
	"date",
	"dateTime",
	"decimal",
	"double",
	"enum",
	"float",
	"integer",
	"ipAddress",
	"json",
	"jsonb",
	"longText",
	"macAddress",
	"mediumInteger",
	"mediumText",
	"morphs",
	"smallInteger",
	"string",
	"text",
	"time",
	"tinyInteger",
	"timestamp",
	"uuid",
}

var validColumnTypes = func() map[ColumnType]bool {
	m := make(map[ColumnType]bool, len(ColumnTypes))
	for _, t := range ColumnTypes {
		m[t] = true
	}
	return m
}()

const (
	primaryKeyName = "id"
	foreignKeyHint = "_id"
)

// IsColumnType reports whether name is a whitelisted column type.
func IsColumnType(name string) bool {
	return validColumnTypes[ColumnType(name)]
}

// ValidColumnTypesList returns the whitelist for error messages.
func ValidColumnTypesList() string {
	names := make([]string, len(ColumnTypes))
	for i, t := range ColumnTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ParseSchema parses the --schema DSL into ordered column specs.
// Format: "id,name:string,parent_id:integer,notes:text?"
//
// A bare entry is a string column, a bare "id" is the increments primary key
// and a bare type name right after a bare column name types that column
// ("id,increments"). An id:increments column is prepended when no id column
// was declared.
func ParseSchema(schema string) ([]ColumnSpec, error) {
	if strings.TrimSpace(schema) == "" {
		return nil, nil
	}

	var columns []ColumnSpec
	seen := make(map[string]bool)
	lastBare := -1 // index of the previous untyped column

	for _, part := range strings.Split(schema, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}

		if lastBare >= 0 && IsColumnType(entry) {
			columns[lastBare].Type = ColumnType(entry)
			lastBare = -1
			continue
		}

		column, typed, err := parseColumn(entry)
		if err != nil {
			return nil, err
		}
		if seen[column.Name] {
			return nil, &InvalidSchemaError{Token: column.Name, Entry: entry, Message: fmt.Sprintf("column %q is declared twice", column.Name)}
		}
		seen[column.Name] = true

		columns = append(columns, column)
		lastBare = -1
		if !typed {
			lastBare = len(columns) - 1
		}
	}

	if !seen[primaryKeyName] {
		columns = append([]ColumnSpec{{Name: primaryKeyName, Type: "increments"}}, columns...)
	}

	return columns, nil
}

// parseColumn parses "name", "name:type" or "name:type?". typed reports
// whether the entry named its type.
func parseColumn(entry string) (column ColumnSpec, typed bool, err error) {
	parts := strings.Split(entry, ":")
	if len(parts) > 2 {
		return ColumnSpec{}, false, &InvalidSchemaError{Token: entry, Entry: entry, Message: "expected 'name' or 'name:type'"}
	}

	name := strings.TrimSpace(parts[0])
	nullable := false
	if len(parts) == 1 && strings.HasSuffix(name, "?") {
		name = strings.TrimSuffix(name, "?")
		nullable = true
	}
	if err := validateIdentifier(name); err != nil {
		return ColumnSpec{}, false, &InvalidSchemaError{Token: name, Entry: entry, Message: "invalid column name: " + err.Error()}
	}

	colType := ColumnType("string")
	if name == primaryKeyName {
		colType = "increments"
	}
	if len(parts) == 2 {
		typeSpec := strings.TrimSpace(parts[1])
		if strings.HasSuffix(typeSpec, "?") {
			typeSpec = strings.TrimSuffix(typeSpec, "?")
			nullable = true
		}
		if !IsColumnType(typeSpec) {
			return ColumnSpec{}, false, &InvalidSchemaError{
				Token:   typeSpec,
				Entry:   entry,
				Message: fmt.Sprintf("unknown column type %q, valid types are: %s", typeSpec, ValidColumnTypesList()),
			}
		}
		colType = ColumnType(typeSpec)
		typed = true
	}

	return ColumnSpec{
		Name:             name,
		Type:             colType,
		Nullable:         nullable,
		IsForeignKeyHint: strings.HasSuffix(name, foreignKeyHint) && name != foreignKeyHint,
	}, typed, nil
}

// validateIdentifier checks that s starts with a letter or underscore and
// contains only letters, digits and underscores.
func validateIdentifier(s string) error {
	if s == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	runes := []rune(s)
	if !unicode.IsLetter(runes[0]) && runes[0] != '_' {
		return fmt.Errorf("identifier must start with a letter or underscore, got %q", string(runes[0]))
	}
	for i, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return fmt.Errorf("identifier contains invalid character %q at position %d", string(r), i+1)
		}
	}
	return nil
}
