package loader

import "github.com/rshade/scrollviz/internal/dataset"

// Scheduler runs a blocking fetch away from the coordinating goroutine and
// delivers the result back to it. Implementations must call complete exactly
// once, on the goroutine that drives the loaders.
type Scheduler interface {
	Schedule(fetch func() (*dataset.Table, error), complete func(*dataset.Table, error))
}

// Inline runs the fetch synchronously and completes immediately. Completion
// therefore happens inside Activate, which the coordinator tolerates.
type Inline struct{}

// Schedule runs fetch and passes its result to complete.
func (Inline) Schedule(fetch func() (*dataset.Table, error), complete func(*dataset.Table, error)) {
	complete(fetch())
}
