// shader_preprocessor.go implements the GLSL #include pre-processor used by the shader loader.
// Each `#include "file"` line is replaced by the contents of file, resolved relative to the including file.
// `#line` directives are emitted around every inclusion so compiler errors keep pointing at the right
// file and line. The source string number of a file is its 1-based position in the include list,
// the root file being 0.
package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

const includeDirective = "#include "

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// readFile loads a source file. Defaults to os.ReadFile.
	readFile func(path string) ([]byte, error)

	// includes accumulates every included path during a Process call, in first-seen order.
	includes []string
}

// PreProcessor expands #include directives in GLSL shader sources.
type PreProcessor interface {
	// Process reads the shader at path and returns its source with every #include expanded.
	// The include list is reset at the start of each call and can be retrieved via Includes() after Process returns.
	//
	// Parameters:
	//   - path: the shader source file
	//
	// Returns:
	//   - string: the expanded shader source
	//   - error: ErrShaderPreprocess for a malformed or cyclic include, or the read error
	Process(path string) (string, error)

	// Includes returns the paths of every file included during the most recent Process call.
	// The reloader watches them alongside the shader itself.
	//
	// Returns:
	//   - []string: the included file paths
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor reading sources from the file system.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{readFile: os.ReadFile}
}

func (p *preProcessor) Process(path string) (string, error) {
	p.includes = p.includes[:0]
	var out strings.Builder
	if err := p.expand(&out, filepath.Clean(path), nil); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (p *preProcessor) Includes() []string {
	return slices.Clone(p.includes)
}

// expand appends the expanded source of path to out. stack holds the chain of files currently being expanded.
func (p *preProcessor) expand(out *strings.Builder, path string, stack []string) error {
	data, err := p.readFile(path)
	if err != nil {
		return errors.Wrapf(ErrAssetNotFound, "shader source %s: %v", path, err)
	}
	source := string(data)
	if !strings.Contains(source, includeDirective) {
		out.WriteString(source)
		return nil
	}

	stack = append(stack, path)
	sourceNumber := p.sourceNumber(path)
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, includeDirective) {
			out.WriteString(line)
			if i < len(lines)-1 {
				out.WriteByte('\n')
			}
			continue
		}

		name, ok := parseInclude(line)
		if !ok {
			return errors.Wrapf(ErrShaderPreprocess, "%s:%d: malformed include %q", path, i+1, strings.TrimSpace(line))
		}
		includePath := filepath.Join(filepath.Dir(path), name)
		if slices.Contains(stack, includePath) {
			return errors.Wrapf(ErrShaderPreprocess, "%s:%d: include of %s would introduce a cycle", path, i+1, name)
		}
		if !slices.Contains(p.includes, includePath) {
			p.includes = append(p.includes, includePath)
		}

		fmt.Fprintf(out, "#line 1 %d\n", p.sourceNumber(includePath))
		if err := p.expand(out, includePath, stack); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n#line %d %d\n", i+2, sourceNumber)
	}
	return nil
}

func (p *preProcessor) sourceNumber(path string) int {
	return slices.Index(p.includes, path) + 1
}

// parseInclude extracts the quoted file name of an include line.
func parseInclude(line string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, includeDirective))
	if len(rest) < 2 || rest[0] != '"' {
		return "", false
	}
	end := strings.IndexByte(rest[1:], '"')
	if end <= 0 || strings.TrimSpace(rest[end+2:]) != "" {
		return "", false
	}
	return rest[1 : end+1], true
}
