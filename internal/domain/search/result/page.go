package result

// Page is one window of records plus the pagination metadata of the whole result.
type Page struct {
	records []Record
	total   int
	number  int
	size    int
}

// NewPage creates a page. number is 1-based; a non-positive size yields a single page.
func NewPage(records []Record, total, number, size int) *Page {
	if number <= 0 {
		number = 1
	}
	return &Page{records: records, total: total, number: number, size: size}
}

// Len returns the number of records on the page.
func (p *Page) Len() int { return len(p.records) }

// IsEmpty reports whether the page holds no records.
func (p *Page) IsEmpty() bool { return len(p.records) == 0 }

// At returns the i-th record of the page.
func (p *Page) At(i int) Record { return p.records[i] }

// Each calls fn for every record in order.
func (p *Page) Each(fn func(i int, r Record)) {
	for i, r := range p.records {
		fn(i, r)
	}
}

// Records returns the page records.
func (p *Page) Records() []Record { return p.records }

// TotalEntries returns the number of matching documents across all pages.
func (p *Page) TotalEntries() int { return p.total }

// PerPage returns the page size.
func (p *Page) PerPage() int { return p.size }

// CurrentPage returns the 1-based page number.
func (p *Page) CurrentPage() int { return p.number }

// TotalPages returns the number of pages needed for all entries.
func (p *Page) TotalPages() int {
	if p.size <= 0 {
		if p.total == 0 {
			return 0
		}
		return 1
	}
	return (p.total + p.size - 1) / p.size
}

// PreviousPage returns the previous page number, or 0 on the first page.
func (p *Page) PreviousPage() int {
	if p.number <= 1 {
		return 0
	}
	return p.number - 1
}

// NextPage returns the next page number, or 0 on the last page.
func (p *Page) NextPage() int {
	if p.number >= p.TotalPages() {
		return 0
	}
	return p.number + 1
}

// Offset returns the number of entries before this page.
func (p *Page) Offset() int {
	if p.size <= 0 {
		return 0
	}
	return (p.number - 1) * p.size
}

// OutOfBounds reports whether the page lies past the last page.
func (p *Page) OutOfBounds() bool { return p.number > p.TotalPages() }
