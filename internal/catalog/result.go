package catalog

// Status discriminates the outcome of a fetch
type Status string

const (
	StatusFound  Status = "found"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Result is the outcome of a fetch. Value holds data only when Status is
// StatusFound; otherwise it is the zero value (nil slice, nil pointer), so a
// caller that ignores Status still reads "not available".
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Found wraps a value that was fetched
func Found[T any](v T) Result[T] {
	return Result[T]{Status: StatusFound, Value: v}
}

// Empty reports that the upstream had no data
func Empty[T any]() Result[T] {
	return Result[T]{Status: StatusEmpty}
}

// Failed reports that the fetch did not complete
func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

func (r Result[T]) IsFound() bool  { return r.Status == StatusFound }
func (r Result[T]) IsEmpty() bool  { return r.Status == StatusEmpty }
func (r Result[T]) IsFailed() bool { return r.Status == StatusFailed }
