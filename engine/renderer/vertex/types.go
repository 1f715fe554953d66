// Package vertex describes vertex record types as GPU attribute layouts.
package vertex

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Position2Texture is a 2D position with texture coordinates.
type Position2Texture struct {
	Position mgl32.Vec2
	TexCoord mgl32.Vec2
}

// Position2TextureColor is the sprite and line batch vertex: a 2D position, texture coordinates and a packed tint.
type Position2TextureColor struct {
	Position mgl32.Vec2
	TexCoord mgl32.Vec2
	Color    common.Color
}

// PositionNormal is a 3D position with a surface normal.
type PositionNormal struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// PositionNormalTexture is a 3D position with a surface normal and texture coordinates.
type PositionNormalTexture struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}
