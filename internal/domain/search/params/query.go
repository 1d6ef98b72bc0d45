package params

import (
	"fmt"
	"net/url"
	"strings"
)

// maxDepth bounds bracket nesting, e.g. g[0][status_in][] has depth 3.
const maxDepth = 4

// ParseQuery decodes a raw URL query string into Params, keeping the order in
// which keys first appear. Bracketed keys build nested values:
//
//	ids_in[]=1&ids_in[]=2          -> ids_in: []string{"1", "2"}
//	g[0][status_eq]=open           -> g: {0: {status_eq: "open"}}
func ParseQuery(raw string) (*Params, error) {
	p := New()
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", rawKey, err)
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}
		base, segs := splitBrackets(key)
		if base == "" || len(segs) > maxDepth {
			continue
		}
		insert(p, base, segs, val)
	}
	return p, nil
}

// splitBrackets turns "g[0][status_eq]" into ("g", ["0", "status_eq"]).
func splitBrackets(key string) (string, []string) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return key, nil
	}
	base, rest := key[:i], key[i:]
	var segs []string
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, nil
		}
		segs = append(segs, rest[1:end])
		rest = rest[end+1:]
	}
	if rest != "" {
		return key, nil
	}
	return base, segs
}

func insert(p *Params, key string, segs []string, val string) {
	if len(segs) == 0 {
		p.Set(key, val)
		return
	}
	if segs[0] == "" {
		if len(segs) > 1 {
			return
		}
		cur, _ := p.Get(key)
		list, _ := cur.([]string)
		p.Set(key, append(list, val))
		return
	}
	cur, _ := p.Get(key)
	child, ok := cur.(*Params)
	if !ok {
		child = New()
		p.Set(key, child)
	}
	insert(child, segs[0], segs[1:], val)
}
