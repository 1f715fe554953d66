package asset

import (
	"image"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// Each loader is split into a decode step that only touches the CPU and may run on any goroutine,
// and an upload step that creates or updates the GPU object and must run on the render thread.

// Texture2DArrayDescription is the TOML file describing a texture array.
// Layer paths are relative to the description file.
type Texture2DArrayDescription struct {
	Width  int      `toml:"width"`
	Height int      `toml:"height"`
	Layers []string `toml:"layers"`
}

// TextureCubeMapDescription is the TOML file describing a cube map.
// Face paths are relative to the description file.
type TextureCubeMapDescription struct {
	Front string `toml:"front"`
	Back  string `toml:"back"`
	Up    string `toml:"up"`
	Down  string `toml:"down"`
	Right string `toml:"right"`
	Left  string `toml:"left"`
}

// Faces returns the face paths in renderer.CubeFace order.
func (d TextureCubeMapDescription) Faces() [6]string {
	return [6]string{d.Front, d.Back, d.Up, d.Down, d.Right, d.Left}
}

func decodeImage(path string) (image.Image, error) {
	if err := ensureFile(path); err != nil {
		return nil, err
	}
	return common.DecodeImageFile(path)
}

func decodeImages(paths []string) ([]image.Image, error) {
	images := make([]image.Image, len(paths))
	for i, path := range paths {
		img, err := decodeImage(path)
		if err != nil {
			return nil, err
		}
		images[i] = img
	}
	return images, nil
}

// decodeImages decodes paths on the decode pool when there is more than one.
// The first failing path, in argument order, is the error reported.
func (m *manager) decodeImages(paths []string) ([]image.Image, error) {
	if m.decodeWorkers < 2 || len(paths) < 2 {
		return decodeImages(paths)
	}

	images := make([]image.Image, len(paths))
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		m.decodePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				images[i], errs[i] = decodeImage(path)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return images, nil
}

// shaderSources holds the expanded sources of a program and every file they include.
type shaderSources struct {
	vertex   string
	fragment string
	includes []string
}

func decodeShader(vertexPath, fragmentPath string) (shaderSources, error) {
	p := NewPreProcessor()
	vs, err := p.Process(vertexPath)
	if err != nil {
		return shaderSources{}, err
	}
	includes := p.Includes()
	fs, err := p.Process(fragmentPath)
	if err != nil {
		return shaderSources{}, err
	}
	for _, inc := range p.Includes() {
		if !slices.Contains(includes, inc) {
			includes = append(includes, inc)
		}
	}
	return shaderSources{vertex: vs, fragment: fs, includes: includes}, nil
}

func readDescription[T any](path string) (T, error) {
	var desc T
	data, err := os.ReadFile(path)
	if err != nil {
		return desc, errors.Wrapf(ErrAssetNotFound, "%s: %v", path, err)
	}
	if err := toml.Unmarshal(data, &desc); err != nil {
		return desc, errors.Wrapf(ErrInvalidDescription, "%s: %v", path, err)
	}
	return desc, nil
}

func readArrayDescription(path string) (Texture2DArrayDescription, []string, error) {
	desc, err := readDescription[Texture2DArrayDescription](path)
	if err != nil {
		return desc, nil, err
	}
	if len(desc.Layers) == 0 {
		return desc, nil, errors.Wrapf(ErrInvalidDescription, "%s: texture array has no layers", path)
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return desc, nil, errors.Wrapf(ErrInvalidDescription, "%s: texture array size %dx%d", path, desc.Width, desc.Height)
	}
	return desc, relativeTo(path, desc.Layers), nil
}

func readCubeMapDescription(path string) ([6]string, error) {
	desc, err := readDescription[TextureCubeMapDescription](path)
	if err != nil {
		return [6]string{}, err
	}
	faces := desc.Faces()
	for i, face := range faces {
		if face == "" {
			return faces, errors.Wrapf(ErrInvalidDescription, "%s: cube face %s is missing", path, renderer.CubeFace(i))
		}
	}
	return [6]string(relativeTo(path, faces[:])), nil
}

func relativeTo(descriptionPath string, names []string) []string {
	dir := filepath.Dir(descriptionPath)
	paths := make([]string, len(names))
	for i, name := range names {
		if filepath.IsAbs(name) {
			paths[i] = filepath.Clean(name)
			continue
		}
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}

// uploadLayers writes one image per array layer. Every image must match the array size.
func uploadLayers(array renderer.Texture2DArray, images []image.Image) error {
	if len(images) != array.Layers() {
		return errors.Wrapf(ErrInvalidArgument, "%d images for %d layers", len(images), array.Layers())
	}
	for i, img := range images {
		data := common.ToImageData(img, true)
		if data.Width != array.Width() || data.Height != array.Height() {
			return errors.Wrapf(ErrInvalidArgument, "layer %d is %dx%d, want %dx%d", i, data.Width, data.Height, array.Width(), array.Height())
		}
		if err := array.SetLayer(i, data.Pixels); err != nil {
			return err
		}
	}
	return nil
}

// ensureFile reports ErrAssetNotFound unless path names a regular file.
func ensureFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(ErrAssetNotFound, "%s: %v", path, err)
	}
	if info.IsDir() {
		return errors.Wrapf(ErrAssetNotFound, "%s is a directory", path)
	}
	return nil
}
