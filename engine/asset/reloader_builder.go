package asset

import "time"

// ReloaderOption is a functional option for configuring a Reloader.
type ReloaderOption func(*reloader)

// WithReloadWorkers sets the maximum number of goroutines decoding changed assets.
//
// Parameters:
//   - workers: the worker count, at least 1
//
// Returns:
//   - ReloaderOption: a function that sets the worker count
func WithReloadWorkers(workers int) ReloaderOption {
	return func(r *reloader) {
		r.workers = max(workers, 1)
	}
}

// WithDebounce sets how long a file must stay unchanged before its assets reload.
// Saving a file usually produces a burst of events and only the last one triggers a reload.
//
// Parameters:
//   - d: the quiet period
//
// Returns:
//   - ReloaderOption: a function that sets the debounce window
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *reloader) {
		r.debounce = max(d, 0)
	}
}
