// Package value coerces raw parameter values into typed values.
package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
)

// Input layouts recognised by the default parser.
const (
	DatetimeLayout = "02.01.2006 15:04"
	DateLayout     = "02.01.2006"
)

var (
	datetimePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4} \d{2}:\d{2}$`)
	datePattern     = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	integerPattern  = regexp.MustCompile(`^-?\d+$`)
	numberPattern   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// integerSuffixes are the predicate suffixes whose list values may hold integers.
var integerSuffixes = []string{"_in", "_eq", "_gt", "_lt", "_gteq", "_lteq"}

// DatetimeParser turns a DD.MM.YYYY[ HH:MM] string into a time.
type DatetimeParser func(s string) (time.Time, error)

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

func (d Date) String() string { return d.Format(time.DateOnly) }

// MarshalJSON renders the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// LayoutParser returns a DatetimeParser that reads both input layouts in loc.
func LayoutParser(loc *time.Location) DatetimeParser {
	if loc == nil {
		loc = time.UTC
	}
	return func(s string) (time.Time, error) {
		layout := DateLayout
		if len(s) > len(DateLayout) {
			layout = DatetimeLayout
		}
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse datetime %q: %w", s, err)
		}
		return t, nil
	}
}

// Normalizer coerces raw values against a field type.
type Normalizer struct {
	parse DatetimeParser
}

// NewNormalizer creates a Normalizer. A nil parser selects LayoutParser(time.UTC).
func NewNormalizer(parse DatetimeParser) *Normalizer {
	if parse == nil {
		parse = LayoutParser(time.UTC)
	}
	return &Normalizer{parse: parse}
}

// Normalize converts raw into a typed value. Boolean coercion runs before any date
// pattern is tried; values matching no rule are returned unchanged.
func (n *Normalizer) Normalize(raw any, t schema.Type) (any, error) {
	if t == schema.Boolean {
		return toBool(raw), nil
	}
	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}
	switch {
	case datetimePattern.MatchString(s):
		return n.parse(s)
	case datePattern.MatchString(s):
		tm, err := n.parse(s)
		if err != nil {
			return nil, err
		}
		return DateOf(tm), nil
	case t == schema.Numeric && numberPattern.MatchString(s):
		return parseNumber(s), nil
	default:
		return raw, nil
	}
}

// NormalizeIntegers converts a list of integer strings to []int64 when key ends in
// an integer-capable predicate suffix. Mixed lists are returned unchanged.
func NormalizeIntegers(key string, raw any) any {
	if !hasIntegerSuffix(key) {
		return raw
	}
	var items []string
	switch t := raw.(type) {
	case []string:
		items = t
	case []any:
		items = make([]string, 0, len(t))
		for _, v := range t {
			s, ok := v.(string)
			if !ok {
				return raw
			}
			items = append(items, s)
		}
	default:
		return raw
	}
	if len(items) == 0 {
		return raw
	}
	out := make([]int64, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if !integerPattern.MatchString(s) {
			return raw
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return raw
		}
		out = append(out, n)
	}
	return out
}

func hasIntegerSuffix(key string) bool {
	for _, suffix := range integerSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

func toBool(raw any) any {
	switch v := raw.(type) {
	case string:
		switch v {
		case "1":
			return true
		case "0":
			return false
		}
	case int:
		switch v {
		case 1:
			return true
		case 0:
			return false
		}
	case int64:
		switch v {
		case 1:
			return true
		case 0:
			return false
		}
	case float64:
		switch v {
		case 1:
			return true
		case 0:
			return false
		}
	}
	return raw
}

func parseNumber(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}
