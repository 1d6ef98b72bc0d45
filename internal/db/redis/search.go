package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/paramsearch/internal/db"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/order"
)

// Search runs a filtered, sorted, paginated FT.SEARCH with scores.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseScoredResult(raw)
}

func buildSearchArgs(q *db.Query) ([]string, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	queryStr, err := renderQuery(q.Where)
	if err != nil {
		return nil, err
	}

	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args, "WITHSCORES")

	sortArgs, err := buildSortArgs(q.Sort)
	if err != nil {
		return nil, err
	}
	args = append(args, sortArgs...)

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
	return args, nil
}

// buildSortArgs maps the sort spec onto SORTBY, which takes a single field.
// A leading relevance order keeps the engine's score order; later orders
// are tie-breaks the engine cannot express and are ignored.
func buildSortArgs(spec order.Spec) ([]string, error) {
	if len(spec) == 0 || spec[0].IsRelevance() {
		return nil, nil
	}
	first := spec[0]
	if !fieldNameRegex.MatchString(first.Field) {
		return nil, fmt.Errorf("%w: sort field %q", db.ErrUnsupportedQuery, first.Field)
	}
	return []string{"SORTBY", first.Field, strings.ToUpper(string(first.Direction))}, nil
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
