package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/paramsearch/internal/db"
)

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// IndexInfo reads the index name, key prefixes and attributes from FT.INFO.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return parseIndexInfo(raw)
}

// parseIndexInfo reads the RESP2 reply: a flat [key, value, key, value, ...] array.
func parseIndexInfo(raw []rueidis.RedisMessage) (*db.IndexInfo, error) {
	info := &db.IndexInfo{}
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		switch key {
		case "index_name":
			if info.Name, err = raw[i+1].ToString(); err != nil {
				return nil, fmt.Errorf("parse index_name: %w", err)
			}
		case "index_definition":
			def, err := raw[i+1].ToArray()
			if err != nil {
				continue
			}
			info.Prefixes = parsePrefixes(def)
		case "attributes":
			attrs, err := raw[i+1].ToArray()
			if err != nil {
				return nil, fmt.Errorf("parse attributes: %w", err)
			}
			for _, a := range attrs {
				parts, err := a.ToArray()
				if err != nil {
					continue
				}
				if f, ok := parseAttribute(parts); ok {
					info.Fields = append(info.Fields, f)
				}
			}
		}
	}
	return info, nil
}

func parsePrefixes(def []rueidis.RedisMessage) []string {
	for i := 0; i+1 < len(def); i += 2 {
		key, err := def[i].ToString()
		if err != nil || key != "prefixes" {
			continue
		}
		items, err := def[i+1].ToArray()
		if err != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if p, err := it.ToString(); err == nil {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// parseAttribute reads one attribute entry. Entries mix key/value pairs with bare
// flags such as SORTABLE, so only known keys consume the following token.
func parseAttribute(parts []rueidis.RedisMessage) (db.IndexField, bool) {
	var f db.IndexField
	for i := 0; i < len(parts); i++ {
		key, err := parts[i].ToString()
		if err != nil || i+1 >= len(parts) {
			continue
		}
		switch key {
		case "identifier", "attribute", "type":
			val, err := parts[i+1].ToString()
			if err != nil {
				continue
			}
			i++
			switch key {
			case "identifier":
				f.Name = val
			case "attribute":
				f.Alias = val
			default:
				f.Type = db.ParseIndexFieldType(val)
			}
		}
	}
	return f, f.Name != ""
}
