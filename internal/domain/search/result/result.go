package result

// Record is a single search hit.
type Record struct {
	id     string
	score  float64
	fields map[string]string
}

// NewRecord creates a search record.
func NewRecord(id string, score float64, fields map[string]string) Record {
	return Record{id: id, score: score, fields: fields}
}

// ID returns the document identifier.
func (r *Record) ID() string { return r.id }

// Score returns the relevance score; zero when the backend did not score.
func (r *Record) Score() float64 { return r.score }

// Fields returns the stored document fields.
func (r *Record) Fields() map[string]string { return r.fields }

// Field returns one stored field.
func (r *Record) Field(name string) (string, bool) {
	v, ok := r.fields[name]
	return v, ok
}
