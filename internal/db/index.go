package db

import "strings"

// IndexFieldType enumerates FT index attribute types.
type IndexFieldType string

const (
	IndexFieldNumeric IndexFieldType = "NUMERIC"
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldText    IndexFieldType = "TEXT"
	IndexFieldGeo     IndexFieldType = "GEO"
	IndexFieldVector  IndexFieldType = "VECTOR"
	IndexFieldUnknown IndexFieldType = ""
)

// ParseIndexFieldType maps an FT.INFO type name to IndexFieldType.
func ParseIndexFieldType(s string) IndexFieldType {
	switch t := IndexFieldType(strings.ToUpper(s)); t {
	case IndexFieldNumeric, IndexFieldTag, IndexFieldText, IndexFieldGeo, IndexFieldVector:
		return t
	default:
		return IndexFieldUnknown
	}
}

// IndexField describes a single attribute of an FT index.
type IndexField struct {
	Name  string // identifier: hash field or JSON path
	Alias string // attribute name used in queries
	Type  IndexFieldType
}

// QueryName returns the name a query uses to address the field.
func (f IndexField) QueryName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexInfo is the subset of FT.INFO the search service needs.
type IndexInfo struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
