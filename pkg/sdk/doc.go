// Package sdk is a Go client for the paramsearch HTTP service.
//
//	c, _ := sdk.New("http://localhost:8080", sdk.WithTimeout(5*time.Second))
//	res, _ := c.Search(ctx, "books", "status_eq=open&s=price+desc", sdk.Page(2))
//
// Parameter order matters to the compiler, so SearchParams takes an ordered map:
//
//	p := orderedmap.New[string, any]()
//	p.Set("title_cont", "dune")
//	p.Set("g", []any{map[string]any{"price_lt": 5}, map[string]any{"is_new_eq": true}})
//	res, _ := c.SearchParams(ctx, "books", p)
package sdk
