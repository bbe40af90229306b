package services

// Status is the load state of a Resource.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resource is the published result of a remote load. A failed load and a
// load that returned nothing are distinct: Failed carries Err, Empty does not.
type Resource[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Loading returns r marked as loading, keeping the previous data on screen.
func (r Resource[T]) Loading() Resource[T] {
	return Resource[T]{Status: StatusLoading, Data: r.Data}
}

// Settled reports whether the load finished, successfully or not.
func (r Resource[T]) Settled() bool {
	return r.Status == StatusReady || r.Status == StatusEmpty || r.Status == StatusFailed
}

// resultOf builds the resource for a finished load.
func resultOf[T any](data T, err error, empty func(T) bool) Resource[T] {
	switch {
	case err != nil:
		var zero T
		return Resource[T]{Status: StatusFailed, Data: zero, Err: err}
	case empty(data):
		return Resource[T]{Status: StatusEmpty, Data: data}
	default:
		return Resource[T]{Status: StatusReady, Data: data}
	}
}

func isEmptySlice[E any](s []E) bool { return len(s) == 0 }
