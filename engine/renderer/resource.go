package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// Resource is implemented by every GPU object created through a RenderContext.
// A Resource owns exactly one native handle for its whole life and must be disposed explicitly.
type Resource interface {
	// Handle returns the native object handle.
	Handle() driver.Handle

	// Label returns the debug label of the resource.
	Label() string

	// SetLabel sets the debug label of the resource and forwards it to the driver's debug layer.
	//
	// Parameters:
	//   - label: the new label
	SetLabel(label string)

	// ParentContext returns the context the resource was created on and must be operated on.
	ParentContext() RenderContext

	// BoundContext returns the context currently holding the resource bound, or nil when it is unbound.
	// The reference does not own the context.
	BoundContext() RenderContext

	// Disposed reports whether Dispose has been called.
	Disposed() bool

	// Dispose detaches the resource from any context binding, releases owned sub-resources and then the native handle.
	// Calling Dispose more than once is a no-op.
	Dispose()

	base() *resource
}

// resource is the shared state embedded by every Resource implementation.
type resource struct {
	ctx      *renderContext
	bound    *renderContext
	bindings int

	id       uint64
	handle   driver.Handle
	kind     driver.LabelKind
	label    string
	disposed bool
}

func newResource(ctx *renderContext, kind driver.LabelKind, handle driver.Handle, label string) resource {
	return resource{
		ctx:    ctx,
		id:     ctx.nextResourceID(),
		handle: handle,
		kind:   kind,
		label:  label,
	}
}

func (r *resource) base() *resource {
	return r
}

func (r *resource) Handle() driver.Handle {
	return r.handle
}

func (r *resource) Label() string {
	return r.label
}

func (r *resource) SetLabel(label string) {
	r.label = label
	if r.disposed {
		return
	}
	r.ctx.drv.ObjectLabel(r.kind, r.handle, label)
}

func (r *resource) ParentContext() RenderContext {
	return r.ctx
}

func (r *resource) BoundContext() RenderContext {
	if r.bound == nil {
		return nil
	}
	return r.bound
}

func (r *resource) Disposed() bool {
	return r.disposed
}

// retain records that ctx holds the resource in one more binding slot.
func (r *resource) retain(ctx *renderContext) {
	r.bound = ctx
	r.bindings++
}

// release records that ctx dropped the resource from one binding slot.
func (r *resource) release() {
	if r.bindings > 0 {
		r.bindings--
	}
	if r.bindings == 0 {
		r.bound = nil
	}
}

// ensureUndisposed returns ErrUseAfterDispose when the resource was disposed.
func (r *resource) ensureUndisposed(op string) error {
	if r.disposed {
		return errors.Wrapf(ErrUseAfterDispose, "%s on %s", op, r.describe())
	}
	return nil
}

// finishDispose marks the resource disposed and drops it from the live registry.
func (r *resource) finishDispose() {
	r.disposed = true
	r.ctx.unregister(r)
}

func (r *resource) describe() string {
	if r.label != "" {
		return fmt.Sprintf("%q (handle %d)", r.label, r.handle)
	}
	return fmt.Sprintf("handle %d", r.handle)
}

// isNil reports whether res is nil or a typed nil pointer.
func isNil(res any) bool {
	return common.IsNil(res)
}
