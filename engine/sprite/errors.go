package sprite

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer"

// Errors returned by batches, aliased from the renderer so errors.Is matches either name.
var (
	ErrInvalidOperationSequence = renderer.ErrInvalidOperationSequence
	ErrInvalidArgument          = renderer.ErrInvalidArgument
	ErrInvalidState             = renderer.ErrInvalidState
	ErrOutOfRange               = renderer.ErrOutOfRange
	ErrUseAfterDispose          = renderer.ErrUseAfterDispose
)
