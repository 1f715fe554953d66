package asset

import (
	"image"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cockroachdb/errors"
)

// Disposable is anything the Manager can release on Dispose.
type Disposable interface {
	Dispose()
}

// Manager loads GPU assets from files below a root directory, caches them by resolved path and
// disposes them together. Its methods must be called on the render thread.
type Manager interface {
	// Root returns the absolute directory relative paths are resolved against.
	Root() string

	// Context returns the render context assets are created on.
	Context() renderer.RenderContext

	// Dispatcher returns the queue drained by Update. Background work may Invoke on it.
	Dispatcher() Dispatcher

	// Reloader returns the hot reloader, or nil when hot reload is disabled.
	Reloader() Reloader

	// Resolve returns the absolute, cleaned form of an asset path.
	Resolve(path string) string

	// LoadTexture2D loads an image file as a texture, or returns the cached texture for the same path.
	//
	// Parameters:
	//   - path: the image path, relative to Root or absolute
	//
	// Returns:
	//   - renderer.Texture2D: the texture
	//   - error: ErrAssetNotFound, ErrAssetTypeMismatch, ErrManagerDisposed, or a decode or upload error
	LoadTexture2D(path string) (renderer.Texture2D, error)

	// LoadShader loads a program from a vertex and a fragment source file, expanding #include directives.
	LoadShader(vertexPath, fragmentPath string) (renderer.ShaderProgram, error)

	// LoadTexture2DArray loads one image per layer into a texture array sized after the first image.
	LoadTexture2DArray(paths ...string) (renderer.Texture2DArray, error)

	// LoadTexture2DArrayDescription loads a texture array from a TOML description file.
	LoadTexture2DArrayDescription(path string) (renderer.Texture2DArray, error)

	// LoadTextureCubeMap loads six square images, in renderer.CubeFace order, into a cube map.
	LoadTextureCubeMap(paths [6]string) (renderer.TextureCubeMap, error)

	// LoadTextureCubeMapDescription loads a cube map from a TOML description file.
	LoadTextureCubeMapDescription(path string) (renderer.TextureCubeMap, error)

	// Unload disposes the asset loaded from paths and forgets it.
	// The paths are the ones passed to the Load call, e.g. both sources for a shader.
	//
	// Parameters:
	//   - paths: the source paths of the asset
	//
	// Returns:
	//   - error: ErrAssetNotFound when nothing was loaded from paths, ErrManagerDisposed
	Unload(paths ...string) error

	// AddDisposable hands d to the Manager so that it is disposed with the loaded assets.
	//
	// Returns:
	//   - bool: false if d was already added
	AddDisposable(d Disposable) bool

	// Loaded returns the cache keys of the loaded assets in load order.
	Loaded() []string

	// Update runs the actions queued on the Dispatcher, including finished hot reloads.
	Update() error

	// Dispose stops the reloader and disposes every loaded asset and added disposable.
	// Calling Dispose more than once is a no-op.
	Dispose()
}

type entry struct {
	key      string
	resource renderer.Resource
	sources  []string
	reload   ReloadFunc
}

type manager struct {
	mu *sync.Mutex

	ctx        renderer.RenderContext
	root       string
	dispatcher Dispatcher
	reloader   Reloader

	hotReload     bool
	reloadOptions []ReloaderOption

	// decodePool decodes the images of multi-file assets in parallel when decodeWorkers is above 1.
	decodePool    worker.DynamicWorkerPool
	decodeWorkers int

	cache       map[string]*entry
	order       []string
	disposables []Disposable
	disposed    bool
}

var _ Manager = &manager{}

// NewManager creates an asset manager loading from root.
//
// Parameters:
//   - ctx: the render context assets are created on
//   - root: the asset root directory
//   - options: dispatcher and hot reload options
//
// Returns:
//   - Manager: the manager
//   - error: ErrInvalidArgument for a nil context, or the reloader error
func NewManager(ctx renderer.RenderContext, root string, options ...ManagerOption) (Manager, error) {
	if common.IsNil(ctx) {
		return nil, errors.Wrap(ErrInvalidArgument, "asset manager requires a render context")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "asset root %q: %v", root, err)
	}
	m := &manager{
		mu:    &sync.Mutex{},
		ctx:   ctx,
		root:  absRoot,
		cache: make(map[string]*entry),

		decodeWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.dispatcher == nil {
		m.dispatcher = NewDispatcher()
	}
	if m.decodeWorkers > 1 {
		m.decodePool = worker.NewDynamicWorkerPool(m.decodeWorkers, 256, 1*time.Second)
	}
	if m.hotReload {
		r, err := NewReloader(m.dispatcher, m.reloadOptions...)
		if err != nil {
			return nil, err
		}
		m.reloader = r
	}
	return m, nil
}

func (m *manager) Root() string {
	return m.root
}

func (m *manager) Context() renderer.RenderContext {
	return m.ctx
}

func (m *manager) Dispatcher() Dispatcher {
	return m.dispatcher
}

func (m *manager) Reloader() Reloader {
	return m.reloader
}

func (m *manager) Resolve(path string) string {
	path = filepath.FromSlash(strings.ReplaceAll(path, "\\", "/"))
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.root, path)
}

func (m *manager) resolveAll(paths []string) []string {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		resolved[i] = m.Resolve(p)
	}
	return resolved
}

// key returns the cache key of the asset loaded from paths.
func (m *manager) key(paths []string) string {
	return strings.Join(m.resolveAll(paths), "|")
}

// cached returns the cached resource for key as T. ok is false when nothing is cached under key.
func cached[T renderer.Resource](m *manager, key string) (res T, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return res, false, errors.Wrap(ErrManagerDisposed, "load")
	}
	e, found := m.cache[key]
	if !found {
		return res, false, nil
	}
	res, match := e.resource.(T)
	if !match {
		return res, true, errors.Wrapf(ErrAssetTypeMismatch, "%s is a %T", key, e.resource)
	}
	return res, true, nil
}

// store caches e and watches its sources when hot reload is enabled.
func (m *manager) store(e *entry) {
	m.mu.Lock()
	m.cache[e.key] = e
	m.order = append(m.order, e.key)
	m.mu.Unlock()

	m.watch(e)
	m.ctx.Logger().Debug("asset loaded", "asset", e.key, "resource", e.resource.Label())
}

func (m *manager) watch(e *entry) {
	if m.reloader == nil || e.reload == nil {
		return
	}
	for _, src := range e.sources {
		if err := m.reloader.Watch(src, e.key, e.reload); err != nil {
			m.ctx.Logger().Warn("asset will not hot reload", "asset", e.key, "path", src, "error", err)
		}
	}
}

func (m *manager) LoadTexture2D(path string) (renderer.Texture2D, error) {
	key := m.key([]string{path})
	if tex, ok, err := cached[renderer.Texture2D](m, key); ok || err != nil {
		return tex, err
	}

	img, err := decodeImage(key)
	if err != nil {
		return nil, err
	}
	tex, err := renderer.NewTexture2DFromImage(m.ctx, img)
	if err != nil {
		return nil, err
	}
	tex.SetLabel(filepath.Base(key))

	m.store(&entry{
		key:      key,
		resource: tex,
		sources:  []string{key},
		reload: func() (func() error, error) {
			img, err := decodeImage(key)
			if err != nil {
				return nil, err
			}
			return func() error { return tex.Reload(img) }, nil
		},
	})
	return tex, nil
}

func (m *manager) LoadShader(vertexPath, fragmentPath string) (renderer.ShaderProgram, error) {
	key := m.key([]string{vertexPath, fragmentPath})
	if program, ok, err := cached[renderer.ShaderProgram](m, key); ok || err != nil {
		return program, err
	}

	vs, fs := m.Resolve(vertexPath), m.Resolve(fragmentPath)
	sources, err := decodeShader(vs, fs)
	if err != nil {
		return nil, err
	}
	program, err := renderer.NewShaderProgram(m.ctx, sources.vertex, sources.fragment)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", key)
	}
	program.SetLabel(filepath.Base(vs) + "+" + filepath.Base(fs))

	m.store(&entry{
		key:      key,
		resource: program,
		sources:  append([]string{vs, fs}, sources.includes...),
		reload: func() (func() error, error) {
			sources, err := decodeShader(vs, fs)
			if err != nil {
				return nil, err
			}
			return func() error { return program.Rebuild(sources.vertex, sources.fragment) }, nil
		},
	})
	return program, nil
}

func (m *manager) LoadTexture2DArray(paths ...string) (renderer.Texture2DArray, error) {
	if len(paths) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "texture array requires at least one layer")
	}
	key := m.key(paths)
	if array, ok, err := cached[renderer.Texture2DArray](m, key); ok || err != nil {
		return array, err
	}
	resolved := m.resolveAll(paths)
	images, err := m.decodeImages(resolved)
	if err != nil {
		return nil, err
	}
	bounds := images[0].Bounds()
	return m.loadArray(key, resolved, resolved, bounds.Dx(), bounds.Dy(), images)
}

func (m *manager) LoadTexture2DArrayDescription(path string) (renderer.Texture2DArray, error) {
	key := m.key([]string{path})
	if array, ok, err := cached[renderer.Texture2DArray](m, key); ok || err != nil {
		return array, err
	}
	desc, layers, err := readArrayDescription(key)
	if err != nil {
		return nil, err
	}
	images, err := m.decodeImages(layers)
	if err != nil {
		return nil, err
	}
	return m.loadArray(key, layers, append([]string{key}, layers...), desc.Width, desc.Height, images)
}

func (m *manager) loadArray(key string, layers, sources []string, width, height int, images []image.Image) (renderer.Texture2DArray, error) {
	array, err := renderer.NewTexture2DArray(m.ctx, width, height, len(images))
	if err != nil {
		return nil, err
	}
	if err := uploadLayers(array, images); err != nil {
		array.Dispose()
		return nil, err
	}
	array.SetLabel(filepath.Base(layers[0]) + " array")

	m.store(&entry{
		key:      key,
		resource: array,
		sources:  sources,
		reload: func() (func() error, error) {
			images, err := m.decodeImages(layers)
			if err != nil {
				return nil, err
			}
			return func() error { return uploadLayers(array, images) }, nil
		},
	})
	return array, nil
}

func (m *manager) LoadTextureCubeMap(paths [6]string) (renderer.TextureCubeMap, error) {
	key := m.key(paths[:])
	if cube, ok, err := cached[renderer.TextureCubeMap](m, key); ok || err != nil {
		return cube, err
	}
	faces := [6]string(m.resolveAll(paths[:]))
	return m.loadCubeMap(key, faces, faces[:])
}

func (m *manager) LoadTextureCubeMapDescription(path string) (renderer.TextureCubeMap, error) {
	key := m.key([]string{path})
	if cube, ok, err := cached[renderer.TextureCubeMap](m, key); ok || err != nil {
		return cube, err
	}
	faces, err := readCubeMapDescription(key)
	if err != nil {
		return nil, err
	}
	return m.loadCubeMap(key, faces, append([]string{key}, faces[:]...))
}

func (m *manager) loadCubeMap(key string, faces [6]string, sources []string) (renderer.TextureCubeMap, error) {
	decode := func() ([6]image.Image, error) {
		images, err := m.decodeImages(faces[:])
		if err != nil {
			return [6]image.Image{}, err
		}
		return [6]image.Image(images), nil
	}
	images, err := decode()
	if err != nil {
		return nil, err
	}
	bounds := images[0].Bounds()
	if bounds.Dx() != bounds.Dy() {
		return nil, errors.Wrapf(ErrInvalidArgument, "cube face %s is %dx%d, faces must be square", faces[0], bounds.Dx(), bounds.Dy())
	}
	cube, err := renderer.NewTextureCubeMap(m.ctx, bounds.Dx())
	if err != nil {
		return nil, err
	}
	if err := cube.SetImages(images); err != nil {
		cube.Dispose()
		return nil, err
	}
	cube.SetLabel(filepath.Base(faces[0]) + " cube")

	m.store(&entry{
		key:      key,
		resource: cube,
		sources:  sources,
		reload: func() (func() error, error) {
			images, err := decode()
			if err != nil {
				return nil, err
			}
			return func() error { return cube.SetImages(images) }, nil
		},
	})
	return cube, nil
}

func (m *manager) Unload(paths ...string) error {
	key := m.key(paths)
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return errors.Wrap(ErrManagerDisposed, "unload")
	}
	e, ok := m.cache[key]
	if !ok {
		m.mu.Unlock()
		return errors.Wrapf(ErrAssetNotFound, "nothing loaded from %s", key)
	}
	delete(m.cache, key)
	m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == key })
	m.mu.Unlock()

	if m.reloader != nil {
		m.reloader.Unwatch(key)
	}
	e.resource.Dispose()
	return nil
}

func (m *manager) AddDisposable(d Disposable) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d == nil || slices.Contains(m.disposables, d) {
		return false
	}
	m.disposables = append(m.disposables, d)
	return true
}

func (m *manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

func (m *manager) Update() error {
	m.mu.Lock()
	disposed := m.disposed
	m.mu.Unlock()
	if disposed {
		return errors.Wrap(ErrManagerDisposed, "update")
	}
	m.dispatcher.ProcessActionQueue()
	return nil
}

func (m *manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	entries := make([]*entry, 0, len(m.order))
	for _, key := range m.order {
		entries = append(entries, m.cache[key])
	}
	disposables := m.disposables
	m.cache, m.order, m.disposables = nil, nil, nil
	m.mu.Unlock()

	if m.reloader != nil {
		if err := m.reloader.Close(); err != nil {
			m.ctx.Logger().Warn("close asset reloader", "error", err)
		}
	}
	for _, d := range disposables {
		d.Dispose()
	}
	for _, e := range entries {
		e.resource.Dispose()
	}
}
