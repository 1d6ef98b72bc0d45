package predicate

import "strings"

// Parsed is a decomposed filter key.
type Parsed struct {
	Fields    []string
	Predicate Predicate
}

// Parse splits key into its field list and predicate. The predicate suffix is
// stripped first, then the remainder is split on OrSeparator.
// It reports false when no predicate matches or a field segment is empty.
func Parse(key string) (Parsed, bool) {
	rest, p, ok := Match(key)
	if !ok {
		return Parsed{}, false
	}
	fields := SplitFields(rest)
	if fields == nil {
		return Parsed{}, false
	}
	return Parsed{Fields: fields, Predicate: p}, true
}

// SplitFields splits "name_or_title" into ["name", "title"]. It returns nil when
// any segment is empty.
func SplitFields(s string) []string {
	fields := strings.Split(s, OrSeparator)
	for _, f := range fields {
		if f == "" {
			return nil
		}
	}
	return fields
}
