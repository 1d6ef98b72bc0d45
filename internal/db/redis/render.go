package redis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/paramsearch/internal/db"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/value"
)

var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// RenderQuery returns the FT.SEARCH query string for c without contacting Redis.
func RenderQuery(c filter.Clause) (string, error) {
	return renderQuery(c)
}

// renderQuery translates a clause tree into Redis Query Engine syntax (DIALECT 2).
//
// Strings and booleans compare as TAG values, numbers and times as NUMERIC ranges.
// Times are unix seconds; a date covers its whole day. A clause stamped with the
// field type overrides this: TEXT fields match exact phrases and 0/1 on boolean
// fields become TAG true/false.
func renderQuery(c filter.Clause) (string, error) {
	switch c.Kind() {
	case filter.KindMatchAll:
		return "*", nil
	case filter.KindQueryString:
		text := c.Text()
		if c.Escape() {
			text = escapeQuery(text)
		}
		return "(" + text + ")", nil
	case filter.KindBool:
		return renderBool(c)
	}

	field, err := fieldRef(c.Field())
	if err != nil {
		return "", err
	}
	switch c.Kind() {
	case filter.KindTerm:
		return renderTerm(field, c.FieldType(), c.Value())
	case filter.KindTerms:
		return renderTerms(field, c.FieldType(), c.Values())
	case filter.KindRange:
		return renderRange(field, c.Range())
	case filter.KindWildcard:
		return fmt.Sprintf("%s:*%s*", field, escapeQuery(c.Text())), nil
	case filter.KindPhrase:
		return fmt.Sprintf(`%s:"%s"`, field, escapeQuery(c.Text())), nil
	case filter.KindPrefix:
		return fmt.Sprintf("%s:%s*", field, escapeQuery(c.Text())), nil
	case filter.KindExists:
		return fmt.Sprintf("-ismissing(%s)", field), nil
	default:
		return "", fmt.Errorf("%w: clause kind %s", db.ErrUnsupportedQuery, c.Kind())
	}
}

func renderBool(c filter.Clause) (string, error) {
	var parts []string
	for _, m := range c.Must() {
		s, err := operand(m)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if should := c.Should(); len(should) > 0 {
		alts := make([]string, 0, len(should))
		for _, sh := range should {
			s, err := operand(sh)
			if err != nil {
				return "", err
			}
			alts = append(alts, s)
		}
		parts = append(parts, "("+strings.Join(alts, " | ")+")")
	}
	for _, n := range c.MustNot() {
		if n.Kind() == filter.KindExists {
			field, err := fieldRef(n.Field())
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("ismissing(%s)", field))
			continue
		}
		s, err := operand(n)
		if err != nil {
			return "", err
		}
		parts = append(parts, "-"+s)
	}
	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, " "), nil
}

// operand renders c so it binds as a single term inside a larger expression.
func operand(c filter.Clause) (string, error) {
	s, err := renderQuery(c)
	if err != nil {
		return "", err
	}
	if c.Kind() == filter.KindBool && boolParts(c) > 1 {
		return "(" + s + ")", nil
	}
	return s, nil
}

func boolParts(c filter.Clause) int {
	n := len(c.Must()) + len(c.MustNot())
	if len(c.Should()) > 0 {
		n++
	}
	return n
}

func renderTerm(field, fieldType string, v any) (string, error) {
	switch fieldType {
	case fieldTypeText:
		return fmt.Sprintf(`%s:"%s"`, field, escapeQuery(textValue(v))), nil
	case fieldTypeBoolean:
		v = boolValue(v)
	}
	if tag, ok := tagValue(v); ok {
		return fmt.Sprintf("%s:{%s}", field, tag), nil
	}
	if d, ok := v.(value.Date); ok {
		start := d.Unix()
		return fmt.Sprintf("%s:[%d (%d]", field, start, start+int64(24*time.Hour/time.Second)), nil
	}
	n, err := numericValue(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:[%s %s]", field, n, n), nil
}

func renderTerms(field, fieldType string, vs []any) (string, error) {
	if len(vs) == 0 {
		return "", fmt.Errorf("%w: empty value list for %s", db.ErrUnsupportedQuery, field)
	}
	if fieldType != fieldTypeText {
		tags := make([]string, 0, len(vs))
		for _, v := range vs {
			if fieldType == fieldTypeBoolean {
				v = boolValue(v)
			}
			tag, ok := tagValue(v)
			if !ok {
				tags = nil
				break
			}
			tags = append(tags, tag)
		}
		if tags != nil {
			return fmt.Sprintf("%s:{%s}", field, strings.Join(tags, " | ")), nil
		}
	}
	alts := make([]string, 0, len(vs))
	for _, v := range vs {
		s, err := renderTerm(field, fieldType, v)
		if err != nil {
			return "", err
		}
		alts = append(alts, s)
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return "(" + strings.Join(alts, " | ") + ")", nil
}

func renderRange(field string, r *filter.Range) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: range without bounds for %s", db.ErrUnsupportedQuery, field)
	}
	lower, upper := "-inf", "+inf"
	bound := func(v any, exclusive bool, dst *string) error {
		if v == nil {
			return nil
		}
		n, err := numericValue(v)
		if err != nil {
			return err
		}
		if exclusive {
			n = "(" + n
		}
		*dst = n
		return nil
	}
	if err := bound(r.GTE(), false, &lower); err != nil {
		return "", err
	}
	if err := bound(r.GT(), true, &lower); err != nil {
		return "", err
	}
	if err := bound(r.LTE(), false, &upper); err != nil {
		return "", err
	}
	if err := bound(r.LT(), true, &upper); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:[%s %s]", field, lower, upper), nil
}

// Field type names as stamped on clauses by the compiler.
const (
	fieldTypeText    = "text"
	fieldTypeBoolean = "boolean"
)

// textValue renders v as the plain text matched against a TEXT attribute.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case value.Date:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// boolValue maps numeric 0/1 to false/true; other values pass through.
func boolValue(v any) any {
	switch t := v.(type) {
	case int:
		return numericBool(float64(t), v)
	case int64:
		return numericBool(float64(t), v)
	case float64:
		return numericBool(t, v)
	default:
		return v
	}
}

func numericBool(n float64, orig any) any {
	switch n {
	case 1:
		return true
	case 0:
		return false
	default:
		return orig
	}
}

// tagValue renders v as an escaped TAG value when it is a string or bool.
func tagValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return tagEscaper.Replace(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func numericValue(v any) (string, error) {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case value.Date:
		return strconv.FormatInt(t.Unix(), 10), nil
	case time.Time:
		return strconv.FormatInt(t.Unix(), 10), nil
	case string:
		if _, err := strconv.ParseFloat(t, 64); err == nil {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %v (%T) is not numeric", db.ErrUnsupportedQuery, v, v)
}

func fieldRef(name string) (string, error) {
	if !fieldNameRegex.MatchString(name) {
		return "", fmt.Errorf("%w: field name %q", db.ErrUnsupportedQuery, name)
	}
	return "@" + name, nil
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
	"|", "\\|",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
