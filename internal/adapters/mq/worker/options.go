package worker

import "github.com/openvolley/scoresheet/pkg/logger"

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFailureHandler registers a callback for events that could not be
// appended, e.g. to release their deduplication key.
func WithFailureHandler(fn FailureFunc) Option {
	return func(w *InMemoryWorker) {
		w.onFailure = fn
	}
}
