package asset

// ManagerOption is a functional option for configuring a Manager.
type ManagerOption func(*manager)

// WithDispatcher makes the Manager drain an existing Dispatcher instead of creating its own.
//
// Parameters:
//   - d: the dispatcher shared with the game loop
//
// Returns:
//   - ManagerOption: a function that sets the dispatcher
func WithDispatcher(d Dispatcher) ManagerOption {
	return func(m *manager) {
		m.dispatcher = d
	}
}

// WithHotReload enables reloading assets when their source files change.
//
// Parameters:
//   - options: options forwarded to the Reloader
//
// Returns:
//   - ManagerOption: a function that enables hot reload
func WithHotReload(options ...ReloaderOption) ManagerOption {
	return func(m *manager) {
		m.hotReload = true
		m.reloadOptions = append(m.reloadOptions, options...)
	}
}

// WithDecodeWorkers sets how many goroutines decode the images of texture arrays and cube maps.
// A count below 2 decodes on the calling goroutine.
//
// Parameters:
//   - n: the maximum number of decode workers
//
// Returns:
//   - ManagerOption: a function that sets the worker count
func WithDecodeWorkers(n int) ManagerOption {
	return func(m *manager) {
		m.decodeWorkers = n
	}
}
