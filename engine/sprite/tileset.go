package sprite

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cockroachdb/errors"
)

// Tileset divides a texture into a grid of equally sized tiles.
type Tileset struct {
	texture    renderer.Texture2D
	columns    int
	rows       int
	tileWidth  int
	tileHeight int
}

// NewTileset divides tex into columns x rows tiles. Tile sizes are truncated to whole pixels.
//
// Parameters:
//   - tex: the tile sheet
//   - columns: the number of tiles across
//   - rows: the number of tiles down
//
// Returns:
//   - *Tileset: the tileset
//   - error: ErrInvalidArgument for a nil texture or a grid that does not fit the texture
func NewTileset(tex renderer.Texture2D, columns, rows int) (*Tileset, error) {
	if common.IsNil(tex) {
		return nil, errors.Wrap(ErrInvalidArgument, "tileset: texture is nil")
	}
	if columns <= 0 || rows <= 0 || columns > tex.Width() || rows > tex.Height() {
		return nil, errors.Wrapf(ErrInvalidArgument, "tileset grid %dx%d on a %dx%d texture", columns, rows, tex.Width(), tex.Height())
	}
	return &Tileset{
		texture:    tex,
		columns:    columns,
		rows:       rows,
		tileWidth:  tex.Width() / columns,
		tileHeight: tex.Height() / rows,
	}, nil
}

// NewTilesetFromTileSize divides tex into as many tileWidth x tileHeight tiles as fit.
func NewTilesetFromTileSize(tex renderer.Texture2D, tileWidth, tileHeight int) (*Tileset, error) {
	if common.IsNil(tex) {
		return nil, errors.Wrap(ErrInvalidArgument, "tileset: texture is nil")
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "tile size %dx%d", tileWidth, tileHeight)
	}
	return NewTileset(tex, tex.Width()/tileWidth, tex.Height()/tileHeight)
}

func (ts *Tileset) Texture() renderer.Texture2D {
	return ts.texture
}

func (ts *Tileset) Columns() int {
	return ts.columns
}

func (ts *Tileset) Rows() int {
	return ts.rows
}

func (ts *Tileset) TileWidth() int {
	return ts.tileWidth
}

func (ts *Tileset) TileHeight() int {
	return ts.tileHeight
}

// TileCount returns the number of tiles in the grid.
func (ts *Tileset) TileCount() int {
	return ts.columns * ts.rows
}

// TileRegion returns the source rectangle of the tile at column x, row y, counted from the top-left.
//
// Parameters:
//   - x: the tile column
//   - y: the tile row
//
// Returns:
//   - common.Rectangle: the tile area in pixels
//   - error: ErrOutOfRange when x or y is outside the grid
func (ts *Tileset) TileRegion(x, y int) (common.Rectangle, error) {
	if x < 0 || x >= ts.columns {
		return common.Rectangle{}, errors.Wrapf(ErrOutOfRange, "tile column %d not in [0, %d)", x, ts.columns)
	}
	if y < 0 || y >= ts.rows {
		return common.Rectangle{}, errors.Wrapf(ErrOutOfRange, "tile row %d not in [0, %d)", y, ts.rows)
	}
	return common.NewRectangle(x*ts.tileWidth, y*ts.tileHeight, ts.tileWidth, ts.tileHeight), nil
}

// Region returns the tile at column x, row y as a TextureRegion.
func (ts *Tileset) Region(x, y int) (TextureRegion, error) {
	r, err := ts.TileRegion(x, y)
	if err != nil {
		return TextureRegion{}, err
	}
	return TextureRegion{Texture: ts.texture, Region: r}, nil
}
