package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPreProcessorExpandsIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib/color.glsl", "vec4 tint(vec4 c) { return c; }")
	writeFile(t, dir, "lib/common.glsl", "#include \"color.glsl\"\nfloat one() { return 1.0; }")
	root := writeFile(t, dir, "sprite.frag", "#version 410 core\n#include \"lib/common.glsl\"\nvoid main() {}")

	p := NewPreProcessor()
	src, err := p.Process(root)
	require.NoError(t, err)

	expected := "#version 410 core\n" +
		"#line 1 1\n" +
		"#line 1 2\n" +
		"vec4 tint(vec4 c) { return c; }\n" +
		"#line 2 1\n" +
		"float one() { return 1.0; }\n" +
		"#line 3 0\n" +
		"void main() {}"
	assert.Equal(t, expected, src)
	assert.Equal(t, []string{
		filepath.Join(dir, "lib", "common.glsl"),
		filepath.Join(dir, "lib", "color.glsl"),
	}, p.Includes())
}

func TestPreProcessorPassesThroughPlainSource(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "plain.vert", "#version 410 core\nvoid main() {}\n")

	p := NewPreProcessor()
	src, err := p.Process(root)
	require.NoError(t, err)
	assert.Equal(t, "#version 410 core\nvoid main() {}\n", src)
	assert.Empty(t, p.Includes())
}

func TestPreProcessorRejectsCycles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.glsl", "#include \"b.glsl\"")
	writeFile(t, dir, "b.glsl", "#include \"a.glsl\"")

	_, err := NewPreProcessor().Process(filepath.Join(dir, "a.glsl"))
	assert.ErrorIs(t, err, ErrShaderPreprocess)
}

func TestPreProcessorRejectsMalformedIncludes(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "unquoted", line: "#include common.glsl"},
		{name: "unterminated", line: "#include \"common.glsl"},
		{name: "empty", line: "#include \"\""},
		{name: "trailing text", line: "#include \"a.glsl\" b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			root := writeFile(t, dir, "root.glsl", tt.line)
			_, err := NewPreProcessor().Process(root)
			assert.ErrorIs(t, err, ErrShaderPreprocess)
		})
	}
}

func TestPreProcessorMissingInclude(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.glsl", "#include \"missing.glsl\"")

	_, err := NewPreProcessor().Process(root)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}
