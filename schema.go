package paramsearch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
)

const (
	tagKey      = "paramsearch"
	labelTagKey = "label"
)

var timeType = reflect.TypeOf(time.Time{})

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ   reflect.Type
	idIdx int

	// Every tagged field except the id, in struct order.
	fields []fieldMapping

	types  map[string]schema.Type
	labels map[string]string
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts paramsearch struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("paramsearch: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("paramsearch: type %s is not a struct", t)
	}

	meta := &schemaMeta{
		typ:    t,
		idIdx:  -1,
		types:  make(map[string]schema.Type),
		labels: make(map[string]string),
	}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if !f.IsExported() {
			return nil, fmt.Errorf("paramsearch: tagged field %s is not exported", f.Name)
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if meta.idIdx == -1 {
		return nil, fmt.Errorf("paramsearch: no field with `paramsearch:\"...,id\"` tag in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's paramsearch tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	name, modifier, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	if !decodable(f.Type) {
		return fmt.Errorf("paramsearch: unsupported type %s on field %s", f.Type, f.Name)
	}

	if modifier == "id" {
		if meta.idIdx != -1 {
			return fmt.Errorf("paramsearch: duplicate id tag on field %s", f.Name)
		}
		meta.idIdx = idx
		return nil
	}

	if modifier != "" {
		ft, err := schema.ParseType(modifier)
		if err != nil {
			return fmt.Errorf("paramsearch: unknown modifier %q on field %s", modifier, f.Name)
		}
		meta.types[name] = ft
	}
	if label := f.Tag.Get(labelTagKey); label != "" {
		meta.labels[name] = label
	}
	meta.fields = append(meta.fields, fieldMapping{structIdx: idx, name: name})
	return nil
}

// static returns the declared field types and labels as a schema.
func (m *schemaMeta) static() *schema.Static {
	return schema.NewStatic(m.types, m.labels)
}

// fromRecord decodes a Record into a new T using schema metadata.
// Fields missing from the record keep their zero value.
func (m *schemaMeta) fromRecord(r Record) (reflect.Value, error) {
	v := reflect.New(m.typ).Elem()

	if err := setValue(v.Field(m.idIdx), r.ID); err != nil {
		return reflect.Value{}, fmt.Errorf("id %q: %w", r.ID, err)
	}
	for _, fm := range m.fields {
		raw, ok := r.Fields[fm.name]
		if !ok {
			continue
		}
		if err := setValue(v.Field(fm.structIdx), raw); err != nil {
			return reflect.Value{}, fmt.Errorf("field %s of %s: %w", fm.name, r.ID, err)
		}
	}
	return v, nil
}

func decodable(t reflect.Type) bool {
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// setValue parses raw into the kind of v. Stored values are strings.
func setValue(v reflect.Value, raw string) error {
	if v.Type() == timeType {
		t, err := parseStoredTime(raw)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(t))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", v.Kind())
	}
	return nil
}

// parseStoredTime accepts unix seconds, RFC 3339 and YYYY-MM-DD.
func parseStoredTime(raw string) (time.Time, error) {
	if sec, err := strconv.ParseFloat(raw, 64); err == nil {
		whole := int64(sec)
		return time.Unix(whole, int64((sec-float64(whole))*1e9)).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
	}
	return t, nil
}
