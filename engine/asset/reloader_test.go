package asset

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReloader(t *testing.T, d Dispatcher) Reloader {
	t.Helper()
	r, err := NewReloader(d, WithDebounce(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestReloaderAppliesOnDispatcher(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "a")
	d := NewDispatcher()
	r := newTestReloader(t, d)

	var decoded atomic.Int32
	applied := 0
	require.NoError(t, r.Watch(path, "a", func() (func() error, error) {
		decoded.Add(1)
		return func() error { applied++; return nil }, nil
	}))

	r.Trigger(path)
	require.Eventually(t, func() bool { return d.Len() == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, applied)
	d.ProcessActionQueue()
	assert.Equal(t, 1, applied)
	assert.Equal(t, int32(1), decoded.Load())
}

func TestReloaderSkipsFailedDecode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "a")
	d := NewDispatcher()
	r := newTestReloader(t, d)

	var calls atomic.Int32
	require.NoError(t, r.Watch(path, "a", func() (func() error, error) {
		calls.Add(1)
		return nil, errors.New("decode failed")
	}))

	r.Trigger(path)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, d.Len())
}

func TestReloaderWatchesFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "a")
	d := NewDispatcher()
	r := newTestReloader(t, d)

	require.NoError(t, r.Watch(path, "a", func() (func() error, error) {
		return func() error { return nil }, nil
	}))
	writeFile(t, dir, "a.txt", "b")

	require.Eventually(t, func() bool { return d.ProcessActionQueue() > 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestReloaderWatchBookkeeping(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a")
	b := writeFile(t, dir, "b.txt", "b")
	r := newTestReloader(t, NewDispatcher())
	noop := func() (func() error, error) { return func() error { return nil }, nil }

	require.NoError(t, r.Watch(a, "first", noop))
	require.NoError(t, r.Watch(a, "second", noop))
	require.NoError(t, r.Watch(b, "second", noop))
	assert.Equal(t, 2, r.Watched())
	assert.ErrorIs(t, r.Watch(a, "third", nil), ErrInvalidArgument)

	r.Unwatch("second")
	assert.Equal(t, 1, r.Watched())
	r.Unwatch("first")
	assert.Equal(t, 0, r.Watched())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Watch(filepath.Join(dir, "a.txt"), "late", noop), ErrManagerDisposed)
	r.Trigger(a)
}

func TestNewReloaderRejectsNilDispatcher(t *testing.T) {
	_, err := NewReloader(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
