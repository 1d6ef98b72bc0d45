// Package paramsearch compiles flat, HTTP-style filter parameters into search
// queries and runs them against a Redis Query Engine index.
//
// # Low-level API
//
//	client, _ := paramsearch.New(ctx, paramsearch.WithRedis("localhost:6379", ""))
//	p, _ := paramsearch.ParseQuery("status_eq=open&price_gteq=10&s=price+asc")
//	res, _ := client.Search(ctx, "books", p, paramsearch.PageNumber(2), paramsearch.PerPage(20))
//
// # Typed API
//
//	type Book struct {
//	    ID        string    `paramsearch:"id,id"`
//	    Title     string    `paramsearch:"title,text" label:"Book title"`
//	    Price     float64   `paramsearch:"price,numeric"`
//	    InStock   bool      `paramsearch:"in_stock,boolean"`
//	    Published time.Time `paramsearch:"published_on,date"`
//	}
//
//	books, _ := paramsearch.NewIndex[Book](client, "books")
//	page, _ := books.Search().Cont("dune", "title").Gte("price", 10).Sort("price desc").Do(ctx)
package paramsearch
