package catalog

// Result is the outcome of a catalog call. A failed call carries the empty
// value and the reason it failed; callers may use Value either way.
type Result[T any] struct {
	Value  T
	Reason error
}

// Failed distinguishes a failed request from one that returned no data.
func (r Result[T]) Failed() bool {
	return r.Reason != nil
}

func succeeded[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func failed[T any](empty T, err error) Result[T] {
	return Result[T]{Value: empty, Reason: err}
}
