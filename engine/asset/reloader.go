package asset

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc decodes a changed asset off the render thread. It returns the action that applies the
// decoded data to the GPU object, which the Reloader queues on its Dispatcher.
type ReloadFunc func() (apply func() error, err error)

// Reloader watches asset source files and reloads their assets when the files change.
// Decoding runs on a worker pool. Applying the result runs on the render thread through a Dispatcher.
type Reloader interface {
	// Watch registers fn to run when the file at path is written or created.
	// One owner may watch many files, and many owners may watch one file.
	//
	// Parameters:
	//   - path: the file to watch
	//   - owner: the key that groups the watches of one asset
	//   - fn: the reload to run on change
	//
	// Returns:
	//   - error: the watcher error if the containing directory cannot be watched
	Watch(path, owner string, fn ReloadFunc) error

	// Unwatch removes every watch registered by owner.
	Unwatch(owner string)

	// Watched returns how many files are currently watched.
	Watched() int

	// Trigger schedules the reloads registered on path as if the file had changed.
	Trigger(path string)

	// Close stops watching. Reloads already queued on the dispatcher still run.
	Close() error
}

type reloader struct {
	mu         *sync.Mutex
	dispatcher Dispatcher
	watcher    *fsnotify.Watcher
	pool       worker.DynamicWorkerPool

	workers  int
	debounce time.Duration

	// watches maps a file to its reloads by owner.
	watches map[string]map[string]ReloadFunc
	// dirs counts the watched files per directory.
	dirs   map[string]int
	timers map[string]*time.Timer

	taskID atomic.Int64
	done   chan struct{}
	closed bool
}

var _ Reloader = &reloader{}

// NewReloader creates a Reloader that hands decoded assets back through dispatcher.
//
// Parameters:
//   - dispatcher: the queue drained on the render thread
//   - options: worker count and debounce options
//
// Returns:
//   - Reloader: the running reloader
//   - error: ErrInvalidArgument for a nil dispatcher, or the fsnotify error
func NewReloader(dispatcher Dispatcher, options ...ReloaderOption) (Reloader, error) {
	if dispatcher == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "reloader requires a dispatcher")
	}
	r := &reloader{
		mu:         &sync.Mutex{},
		dispatcher: dispatcher,
		workers:    2,
		debounce:   50 * time.Millisecond,
		watches:    make(map[string]map[string]ReloadFunc),
		dirs:       make(map[string]int),
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range options {
		opt(r)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	r.watcher = watcher
	r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)

	go r.watch()
	return r, nil
}

func (r *reloader) Watch(path, owner string, fn ReloadFunc) error {
	if fn == nil {
		return errors.Wrap(ErrInvalidArgument, "reload func is nil")
	}
	path = filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.Wrap(ErrManagerDisposed, "reloader is closed")
	}

	owners, ok := r.watches[path]
	if !ok {
		dir := filepath.Dir(path)
		// Editors often save by replacing the file, so the directory is watched rather than the file.
		if r.dirs[dir] == 0 {
			if err := r.watcher.Add(dir); err != nil {
				return errors.Wrapf(err, "watch %s", dir)
			}
		}
		r.dirs[dir]++
		owners = make(map[string]ReloadFunc)
		r.watches[path] = owners
	}
	owners[owner] = fn
	return nil
}

func (r *reloader) Unwatch(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, owners := range r.watches {
		if _, ok := owners[owner]; !ok {
			continue
		}
		delete(owners, owner)
		if len(owners) > 0 {
			continue
		}
		delete(r.watches, path)
		if t, ok := r.timers[path]; ok {
			t.Stop()
			delete(r.timers, path)
		}
		dir := filepath.Dir(path)
		r.dirs[dir]--
		if r.dirs[dir] == 0 {
			delete(r.dirs, dir)
			if !r.closed {
				_ = r.watcher.Remove(dir)
			}
		}
	}
}

func (r *reloader) Watched() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watches)
}

func (r *reloader) Trigger(path string) {
	path = filepath.Clean(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if _, ok := r.watches[path]; !ok {
		return
	}
	if t, ok := r.timers[path]; ok {
		t.Reset(r.debounce)
		return
	}
	r.timers[path] = time.AfterFunc(r.debounce, func() { r.fire(path) })
}

func (r *reloader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for path, t := range r.timers {
		t.Stop()
		delete(r.timers, path)
	}
	r.mu.Unlock()

	close(r.done)
	return r.watcher.Close()
}

// watch forwards fsnotify events until Close.
func (r *reloader) watch() {
	for {
		select {
		case <-r.done:
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				r.Trigger(ev.Name)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			common.Logger().Error("asset watcher error", "error", err)
		}
	}
}

// fire submits the reloads of path to the worker pool once its debounce window has passed.
func (r *reloader) fire(path string) {
	r.mu.Lock()
	delete(r.timers, path)
	if r.closed {
		r.mu.Unlock()
		return
	}
	fns := make([]ReloadFunc, 0, len(r.watches[path]))
	for _, fn := range r.watches[path] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		r.pool.SubmitTask(worker.Task{
			ID: int(r.taskID.Add(1)),
			Do: func() (any, error) {
				apply, err := fn()
				if err != nil {
					common.Logger().Error("asset reload failed", "path", path, "error", err)
					return nil, err
				}
				r.dispatcher.Invoke(func() {
					if err := apply(); err != nil {
						common.Logger().Error("asset reload failed", "path", path, "error", err)
						return
					}
					common.Logger().Info("asset reloaded", "path", path)
				})
				return nil, nil
			},
		})
	}
}
