// Package batch holds per-item outcomes of multi-search requests.
package batch

// ItemStatus is the outcome of one search in a batch.
type ItemStatus string

// Item outcomes as reported on the wire.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result pairs a batch item ID with either a value or the error that replaced it.
type Result[T any] struct {
	id    string
	value T
	err   error
}

// NewOK creates a successful result carrying v.
func NewOK[T any](id string, v T) Result[T] {
	return Result[T]{id: id, value: v}
}

// NewError creates a failed result. A nil err is not allowed.
func NewError[T any](id string, err error) Result[T] {
	if err == nil {
		panic("batch: NewError with nil error")
	}
	return Result[T]{id: id, err: err}
}

// Resolve builds a result from a (value, error) pair; v is discarded on error.
func Resolve[T any](id string, v T, err error) Result[T] {
	if err != nil {
		return NewError[T](id, err)
	}
	return NewOK(id, v)
}

// ID returns the item identifier.
func (r Result[T]) ID() string { return r.id }

// Status derives the outcome from the error.
func (r Result[T]) Status() ItemStatus {
	if r.err != nil {
		return StatusError
	}
	return StatusOK
}

// Value returns the payload, or the zero value for failed items.
func (r Result[T]) Value() T { return r.value }

// Err returns the item error.
func (r Result[T]) Err() error { return r.err }

// Tally counts successful and failed results.
func Tally[T any](rs []Result[T]) (ok, failed int) {
	for _, r := range rs {
		if r.err != nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}
