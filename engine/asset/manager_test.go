package asset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver/drivertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (renderer.RenderContext, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New()
	ctx, err := renderer.NewRenderContext(drv)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Dispose() })
	return ctx, drv
}

func newTestManager(t *testing.T, root string, options ...ManagerOption) (Manager, renderer.RenderContext, *drivertest.Driver) {
	t.Helper()
	ctx, drv := newTestContext(t)
	m, err := NewManager(ctx, root, options...)
	require.NoError(t, err)
	t.Cleanup(m.Dispose)
	return m, ctx, drv
}

func writePNG(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

type countingDisposable struct {
	disposed int
}

func (d *countingDisposable) Dispose() {
	d.disposed++
}

func TestManagerLoadTexture2DCachesByFullPath(t *testing.T) {
	dir := t.TempDir()
	abs := writePNG(t, dir, "sprites/hero.png", 4, 2, color.RGBA{R: 255, A: 255})
	m, _, drv := newTestManager(t, dir)

	tex, err := m.LoadTexture2D("sprites/hero.png")
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 2, tex.Height())
	assert.Equal(t, "hero.png", tex.Label())
	assert.Equal(t, []byte{255, 0, 0, 255}, drv.Textures[tex.Handle()].Pixels[:4])

	again, err := m.LoadTexture2D(abs)
	require.NoError(t, err)
	assert.Same(t, tex, again)
	again, err = m.LoadTexture2D("sprites\\hero.png")
	require.NoError(t, err)
	assert.Same(t, tex, again)
	assert.Equal(t, []string{abs}, m.Loaded())
}

func TestManagerLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 2, 2, color.RGBA{A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644))
	m, _, _ := newTestManager(t, dir)

	_, err := m.LoadTexture2D("missing.png")
	assert.ErrorIs(t, err, ErrAssetNotFound)
	_, err = m.LoadTexture2D(".")
	assert.ErrorIs(t, err, ErrAssetNotFound)
	_, err = m.LoadTexture2D("broken.png")
	assert.Error(t, err)
	_, err = m.LoadTexture2DArray()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = m.LoadTexture2D("a.png")
	require.NoError(t, err)
	_, err = m.LoadTexture2DArray("a.png")
	assert.ErrorIs(t, err, ErrAssetTypeMismatch)
}

func TestManagerLoadShaderExpandsIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shaders/common.glsl", "uniform mat4 transform;")
	writeFile(t, dir, "shaders/sprite.vert", "#version 410 core\n#include \"common.glsl\"\nvoid main() {}")
	writeFile(t, dir, "shaders/sprite.frag", "#version 410 core\nvoid main() {}")
	m, _, drv := newTestManager(t, dir)

	program, err := m.LoadShader("shaders/sprite.vert", "shaders/sprite.frag")
	require.NoError(t, err)
	assert.Equal(t, "sprite.vert+sprite.frag", program.Label())
	assert.Contains(t, drv.Programs[program.Handle()].VertexSource, "uniform mat4 transform;")
	assert.NotContains(t, drv.Programs[program.Handle()].VertexSource, "#include")

	again, err := m.LoadShader("shaders/sprite.vert", "shaders/sprite.frag")
	require.NoError(t, err)
	assert.Same(t, program, again)

	require.NoError(t, m.Unload("shaders/sprite.vert", "shaders/sprite.frag"))
	assert.True(t, program.Disposed())
}

func TestManagerLoadTextureArrays(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "layers/0.png", 4, 4, color.RGBA{R: 255, A: 255})
	writePNG(t, dir, "layers/1.png", 4, 4, color.RGBA{G: 255, A: 255})
	writePNG(t, dir, "layers/small.png", 2, 2, color.RGBA{B: 255, A: 255})
	writeFile(t, dir, "layers/terrain.toml", "width = 4\nheight = 4\nlayers = [\"0.png\", \"1.png\"]\n")
	writeFile(t, dir, "layers/empty.toml", "width = 4\nheight = 4\nlayers = []\n")
	m, _, _ := newTestManager(t, dir)

	array, err := m.LoadTexture2DArray("layers/0.png", "layers/1.png")
	require.NoError(t, err)
	assert.Equal(t, 2, array.Layers())
	assert.Equal(t, 4, array.Width())

	described, err := m.LoadTexture2DArrayDescription("layers/terrain.toml")
	require.NoError(t, err)
	assert.NotSame(t, array, described)
	assert.Equal(t, 2, described.Layers())

	_, err = m.LoadTexture2DArray("layers/0.png", "layers/small.png")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = m.LoadTexture2DArrayDescription("layers/empty.toml")
	assert.ErrorIs(t, err, ErrInvalidDescription)
}

func TestManagerDecodeWorkers(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 5 {
		paths = append(paths, writePNG(t, dir, filepath.Join("frames", string(rune('a'+i))+".png"), i+1, 1, color.RGBA{A: 255}))
	}
	// Both managers share one context; only one may be live at a time.
	ctx, _ := newTestContext(t)
	parallel, err := NewManager(ctx, dir, WithDecodeWorkers(4))
	require.NoError(t, err)
	t.Cleanup(parallel.Dispose)
	serial, err := NewManager(ctx, dir, WithDecodeWorkers(1))
	require.NoError(t, err)
	t.Cleanup(serial.Dispose)

	for _, m := range []Manager{parallel, serial} {
		images, err := m.(*manager).decodeImages(paths)
		require.NoError(t, err)
		require.Len(t, images, len(paths))
		for i, img := range images {
			assert.Equal(t, i+1, img.Bounds().Dx(), "images keep argument order")
		}
	}

	missing := []string{paths[0], filepath.Join(dir, "frames/gone.png"), filepath.Join(dir, "frames/also_gone.png")}
	_, err = parallel.(*manager).decodeImages(missing)
	require.ErrorIs(t, err, ErrAssetNotFound)
	assert.Contains(t, err.Error(), "gone.png")
	assert.NotContains(t, err.Error(), "also_gone.png")
}

func TestManagerLoadTextureCubeMap(t *testing.T) {
	dir := t.TempDir()
	var faces [6]string
	for i, name := range []string{"front", "back", "up", "down", "right", "left"} {
		writePNG(t, dir, "sky/"+name+".png", 8, 8, color.RGBA{R: uint8(i * 40), A: 255})
		faces[i] = "sky/" + name + ".png"
	}
	writeFile(t, dir, "sky/sky.toml", strings.Join([]string{
		`front = "front.png"`, `back = "back.png"`, `up = "up.png"`,
		`down = "down.png"`, `right = "right.png"`, `left = "left.png"`,
	}, "\n"))
	writeFile(t, dir, "sky/partial.toml", `front = "front.png"`)
	m, _, drv := newTestManager(t, dir)

	cube, err := m.LoadTextureCubeMap(faces)
	require.NoError(t, err)
	assert.Equal(t, 8, cube.Size())
	assert.Len(t, drv.Textures[cube.Handle()].Faces, 6)

	described, err := m.LoadTextureCubeMapDescription("sky/sky.toml")
	require.NoError(t, err)
	assert.Equal(t, 8, described.Size())

	_, err = m.LoadTextureCubeMapDescription("sky/partial.toml")
	assert.ErrorIs(t, err, ErrInvalidDescription)
}

func TestManagerUnloadAndDispose(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 2, 2, color.RGBA{A: 255})
	writePNG(t, dir, "b.png", 2, 2, color.RGBA{A: 255})
	m, ctx, _ := newTestManager(t, dir)

	a, err := m.LoadTexture2D("a.png")
	require.NoError(t, err)
	b, err := m.LoadTexture2D("b.png")
	require.NoError(t, err)

	require.NoError(t, m.Unload("a.png"))
	assert.True(t, a.Disposed())
	assert.ErrorIs(t, m.Unload("a.png"), ErrAssetNotFound)
	assert.Equal(t, []string{filepath.Join(m.Root(), "b.png")}, m.Loaded())

	extra := &countingDisposable{}
	assert.True(t, m.AddDisposable(extra))
	assert.False(t, m.AddDisposable(extra))
	assert.False(t, m.AddDisposable(nil))

	m.Dispose()
	m.Dispose()
	assert.True(t, b.Disposed())
	assert.Equal(t, 1, extra.disposed)
	assert.Empty(t, ctx.LiveResources())

	_, err = m.LoadTexture2D("b.png")
	assert.ErrorIs(t, err, ErrManagerDisposed)
	assert.ErrorIs(t, m.Update(), ErrManagerDisposed)
	assert.ErrorIs(t, m.Unload("b.png"), ErrManagerDisposed)
}

func TestManagerUpdateDrainsDispatcher(t *testing.T) {
	d := NewDispatcher()
	m, _, _ := newTestManager(t, t.TempDir(), WithDispatcher(d))
	assert.Same(t, d, m.Dispatcher())
	assert.Nil(t, m.Reloader())

	ran := false
	d.Invoke(func() { ran = true })
	require.NoError(t, m.Update())
	assert.True(t, ran)
}

func TestManagerHotReloadsTexture(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "hero.png", 2, 2, color.RGBA{R: 255, A: 255})
	m, _, drv := newTestManager(t, dir, WithHotReload(WithDebounce(0), WithReloadWorkers(1)))
	require.NotNil(t, m.Reloader())

	tex, err := m.LoadTexture2D("hero.png")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Reloader().Watched())
	first := tex.Handle()

	writePNG(t, dir, "hero.png", 4, 4, color.RGBA{G: 255, A: 255})
	m.Reloader().Trigger(path)

	require.Eventually(t, func() bool {
		require.NoError(t, m.Update())
		return tex.Width() == 4
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotEqual(t, first, tex.Handle())
	assert.Equal(t, []byte{0, 255, 0, 255}, drv.Textures[tex.Handle()].Pixels[:4])

	require.NoError(t, m.Unload("hero.png"))
	assert.Equal(t, 0, m.Reloader().Watched())
}

func TestManagerHotReloadsShaderInclude(t *testing.T) {
	dir := t.TempDir()
	include := writeFile(t, dir, "common.glsl", "// v1")
	writeFile(t, dir, "s.vert", "#include \"common.glsl\"\nvoid main() {}")
	writeFile(t, dir, "s.frag", "void main() {}")
	m, _, drv := newTestManager(t, dir, WithHotReload(WithDebounce(0)))

	program, err := m.LoadShader("s.vert", "s.frag")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Reloader().Watched())

	writeFile(t, dir, "common.glsl", "// v2")
	m.Reloader().Trigger(include)

	require.Eventually(t, func() bool {
		require.NoError(t, m.Update())
		return strings.Contains(drv.Programs[program.Handle()].VertexSource, "// v2")
	}, 5*time.Second, 10*time.Millisecond)
}
