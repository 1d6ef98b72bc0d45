// Package schema resolves the semantic type of index fields.
package schema

import (
	"fmt"
	"strings"
)

// Type is the semantic data type of a field.
type Type string

// Field type constants.
const (
	Boolean  Type = "boolean"
	Date     Type = "date"
	Datetime Type = "datetime"
	Numeric  Type = "numeric"
	Text     Type = "text"
	// Unknown fields get no value coercion.
	Unknown Type = "unknown"
)

// ParseType maps a declared type name to a Type. Common aliases are accepted.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return Boolean, nil
	case "date":
		return Date, nil
	case "datetime", "timestamp", "time":
		return Datetime, nil
	case "numeric", "integer", "int", "long", "float", "double", "decimal":
		return Numeric, nil
	case "text", "string", "keyword", "tag":
		return Text, nil
	default:
		return Unknown, fmt.Errorf("unknown field type %q", s)
	}
}

// Field is an immutable value object describing a declared field.
type Field struct {
	name      string
	fieldType Type
}

// New validates and creates a Field.
func New(name string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	switch ft {
	case Boolean, Date, Datetime, Numeric, Text:
	default:
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft}, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, ft Type) Field {
	return Field{name: name, fieldType: ft}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field's semantic type.
func (f Field) FieldType() Type { return f.fieldType }
