package sprite

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTilesetFromTileSize(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := newTestTexture(t, ctx, 64, 48)

	ts, err := NewTilesetFromTileSize(tex, 16, 16)
	require.NoError(t, err)
	assert.Equal(t, 4, ts.Columns())
	assert.Equal(t, 3, ts.Rows())
	assert.Equal(t, 12, ts.TileCount())
	assert.Equal(t, 16, ts.TileWidth())
	assert.Equal(t, 16, ts.TileHeight())
	assert.Equal(t, tex, ts.Texture())
}

func TestNewTilesetRejectsBadGrid(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := newTestTexture(t, ctx, 8, 8)

	tests := []struct {
		name          string
		columns, rows int
	}{
		{name: "zero columns", columns: 0, rows: 1},
		{name: "negative rows", columns: 1, rows: -1},
		{name: "wider than texture", columns: 9, rows: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTileset(tex, tt.columns, tt.rows)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := NewTileset(nil, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewTilesetFromTileSize(tex, 0, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTilesetRegions(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := newTestTexture(t, ctx, 30, 20)
	ts, err := NewTileset(tex, 3, 2)
	require.NoError(t, err)

	r, err := ts.TileRegion(2, 1)
	require.NoError(t, err)
	assert.Equal(t, common.NewRectangle(20, 10, 10, 10), r)

	region, err := ts.Region(0, 1)
	require.NoError(t, err)
	assert.Equal(t, tex, region.Texture)
	assert.Equal(t, common.NewRectangle(0, 10, 10, 10), region.Region)

	_, err = ts.TileRegion(3, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = ts.TileRegion(0, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNewTextureRegion(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := newTestTexture(t, ctx, 16, 16)

	region, err := NewTextureRegion(tex, common.NewRectangle(4, 4, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, common.NewRectangle(4, 4, 8, 8), region.Region)

	_, err = NewTextureRegion(tex, common.NewRectangle(10, 10, 8, 8))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = NewTextureRegion(tex, common.NewRectangle(0, 0, 0, 8))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = NewTextureRegion(nil, common.NewRectangle(0, 0, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, common.NewRectangle(0, 0, 16, 16), FullRegion(tex).Region)
}
