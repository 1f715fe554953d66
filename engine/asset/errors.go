package asset

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cockroachdb/errors"
)

var (
	// ErrManagerDisposed is returned by every Manager operation after Dispose.
	ErrManagerDisposed = errors.New("asset manager is disposed")

	// ErrAssetNotFound is returned when a path names no file or no loaded asset.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrAssetTypeMismatch is returned when a cached asset is requested as a different type.
	ErrAssetTypeMismatch = errors.New("cached asset has a different type")

	// ErrShaderPreprocess is returned for malformed or cyclic #include directives.
	ErrShaderPreprocess = errors.New("shader pre-processing failed")

	// ErrInvalidDescription is returned for texture array and cube map descriptions that cannot be loaded.
	ErrInvalidDescription = errors.New("invalid asset description")

	ErrInvalidArgument = renderer.ErrInvalidArgument
)
