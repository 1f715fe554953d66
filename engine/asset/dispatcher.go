package asset

import "sync"

// Dispatcher queues actions from any goroutine for later invocation on the render thread.
// GPU objects may only be touched on the thread that owns the render context, so background
// work hands its results back through a Dispatcher.
type Dispatcher interface {
	// Invoke queues fn. It is safe to call from any goroutine.
	//
	// Parameters:
	//   - fn: the action to run on the next ProcessActionQueue
	Invoke(fn func())

	// ProcessActionQueue runs every queued action in FIFO order on the calling goroutine.
	// Actions queued while the queue is being processed run in the same call.
	//
	// Returns:
	//   - int: the number of actions that ran
	ProcessActionQueue() int

	// Len returns the number of queued actions.
	Len() int
}

type dispatcher struct {
	mu      *sync.Mutex
	actions []func()
}

var _ Dispatcher = &dispatcher{}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() Dispatcher {
	return &dispatcher{mu: &sync.Mutex{}}
}

func (d *dispatcher) Invoke(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, fn)
}

func (d *dispatcher) ProcessActionQueue() int {
	ran := 0
	for {
		fn, ok := d.dequeue()
		if !ok {
			return ran
		}
		fn()
		ran++
	}
}

func (d *dispatcher) dequeue() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.actions) == 0 {
		return nil, false
	}
	fn := d.actions[0]
	d.actions[0] = nil
	d.actions = d.actions[1:]
	return fn, true
}

func (d *dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.actions)
}
