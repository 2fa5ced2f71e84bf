package state

import (
	"context"
	"sync"
)

type ResourceStatus string

const (
	ResourceIdle    ResourceStatus = "idle"
	ResourceLoading ResourceStatus = "loading"
	ResourceSuccess ResourceStatus = "success"
	ResourceError   ResourceStatus = "error"
)

// Resource wraps one on-demand backend request in an idle/loading/success/
// error lifecycle. Overlapping fetches are resolved by generation: only the
// newest fetch may settle the resource, so a slow response can never clobber
// the result of a later call or of SetData.
type Resource[T any] struct {
	mu      sync.Mutex
	gen     uint64
	status  ResourceStatus
	data    T
	hasData bool
	err     string
}

// ResourceSnapshot is a read-only copy for presentation code.
type ResourceSnapshot[T any] struct {
	Status  ResourceStatus
	Data    T
	HasData bool
	Err     string
}

func NewResource[T any]() *Resource[T] {
	return &Resource[T]{status: ResourceIdle}
}

// Fetch runs produce and settles the resource with its result. It is meant
// to be called from its own goroutine (a tea.Cmd); the resource is in the
// loading state for the duration. Failures settle as an error string and are
// never retried automatically.
func (r *Resource[T]) Fetch(ctx context.Context, produce func(context.Context) (T, error)) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.status = ResourceLoading
	r.mu.Unlock()

	v, err := produce(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return // superseded while in flight
	}
	if err != nil {
		r.status = ResourceError
		r.err = err.Error()
		return
	}
	r.status = ResourceSuccess
	r.data = v
	r.hasData = true
	r.err = ""
}

// SetData imperatively overrides the resource, orphaning any in-flight fetch.
// Used when a push event supersedes a pending snapshot request.
func (r *Resource[T]) SetData(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.status = ResourceSuccess
	r.data = v
	r.hasData = true
	r.err = ""
}

func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	var zero T
	r.status = ResourceIdle
	r.data = zero
	r.hasData = false
	r.err = ""
}

func (r *Resource[T]) Snapshot() ResourceSnapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ResourceSnapshot[T]{
		Status:  r.status,
		Data:    r.data,
		HasData: r.hasData,
		Err:     r.err,
	}
}
