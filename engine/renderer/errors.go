package renderer

import "github.com/cockroachdb/errors"

// Contract violations reported by the render context and its resources. Callers match them with errors.Is;
// every returned error wraps exactly one of these sentinels with context about the failing call.
var (
	// ErrUseAfterDispose is returned by any operation on a resource that has been disposed.
	ErrUseAfterDispose = errors.New("resource used after dispose")
	// ErrInvalidArgument is returned for nil resources and structurally invalid arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange is returned for texture units, layers and regions outside their valid bounds.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidOperationSequence is returned when a state machine is driven out of order.
	ErrInvalidOperationSequence = errors.New("invalid operation sequence")
	// ErrInvalidState is returned when an operation's preconditions on owned state are not met.
	ErrInvalidState = errors.New("invalid state")
	// ErrContextMismatch is returned when a resource is used with a context other than the one that created it.
	ErrContextMismatch = errors.New("resource belongs to another render context")
	// ErrContextExists is returned when a second render context is created while one is live.
	ErrContextExists = errors.New("a render context already exists")
	// ErrResourceLeak is returned by RenderContext.Dispose when resources were never disposed.
	ErrResourceLeak = errors.New("resources leaked")
	// ErrIncompleteFramebuffer is returned when a framebuffer fails its completeness check.
	ErrIncompleteFramebuffer = errors.New("framebuffer incomplete")
	// ErrShaderCompile is returned when a shader program fails to compile or link.
	ErrShaderCompile = errors.New("shader program failed to build")
)
