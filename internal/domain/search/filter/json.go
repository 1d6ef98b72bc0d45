package filter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalJSON renders the clause in Elasticsearch query DSL.
func (c Clause) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(c.DSL())
	if err != nil {
		return nil, fmt.Errorf("marshal %s clause: %w", c.kind, err)
	}
	return b, nil
}

// DSL returns the clause as a generic Elasticsearch query DSL document.
func (c Clause) DSL() map[string]any {
	switch c.kind {
	case KindMatchAll:
		return map[string]any{"match_all": map[string]any{}}
	case KindQueryString:
		q := c.text
		if c.escape {
			q = LuceneEscape(q)
		}
		return map[string]any{"query_string": map[string]any{"query": q}}
	case KindTerm:
		return map[string]any{"term": map[string]any{c.field: c.value}}
	case KindTerms:
		return map[string]any{"terms": map[string]any{c.field: c.values}}
	case KindRange:
		return map[string]any{"range": map[string]any{c.field: c.bounds.dsl()}}
	case KindWildcard:
		return map[string]any{"wildcard": map[string]any{
			c.field: map[string]any{"value": "*" + WildcardEscape(c.text) + "*"},
		}}
	case KindPhrase:
		return map[string]any{"match_phrase": map[string]any{c.field: c.text}}
	case KindPrefix:
		return map[string]any{"prefix": map[string]any{c.field: c.text}}
	case KindExists:
		return map[string]any{"exists": map[string]any{"field": c.field}}
	case KindBool:
		return map[string]any{"bool": c.boolDSL()}
	default:
		return map[string]any{}
	}
}

func (c Clause) boolDSL() map[string]any {
	b := make(map[string]any, 4)
	if len(c.must) > 0 {
		b["must"] = c.must
	}
	if len(c.should) > 0 {
		b["should"] = c.should
		b["minimum_should_match"] = 1
	}
	if len(c.mustNot) > 0 {
		b["must_not"] = c.mustNot
	}
	return b
}

func (r *Range) dsl() map[string]any {
	m := make(map[string]any, 2)
	if r.gt != nil {
		m["gt"] = r.gt
	}
	if r.gte != nil {
		m["gte"] = r.gte
	}
	if r.lt != nil {
		m["lt"] = r.lt
	}
	if r.lte != nil {
		m["lte"] = r.lte
	}
	return m
}

var luceneEscaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`&`, `\&`,
	`|`, `\|`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`"`, `\"`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`:`, `\:`,
	`/`, `\/`,
)

// LuceneEscape escapes Lucene query_string syntax characters.
func LuceneEscape(s string) string {
	return luceneEscaper.Replace(s)
}

var wildcardEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
)

// WildcardEscape escapes the metacharacters of a wildcard query.
func WildcardEscape(s string) string {
	return wildcardEscaper.Replace(s)
}
