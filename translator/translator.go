// Package translator validates the reveal program and translates it from
// WebGL2 to the dialect of the running GL context.
package translator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/richinsley/goreveal/logging"
	"github.com/richinsley/goreveal/shader"
	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the process-wide translator, creating it on first use.
func Get(ctx context.Context) (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(ctx)
		if initErr == nil {
			logging.Logger().Debug("Shader translator initialized")
		}
	})
	return translator, initErr
}

// Compiled is a translated program.
type Compiled struct {
	Vertex   string
	Fragment string
	// Names maps each declared uniform and attribute to its name in the
	// translated code.
	Names map[string]string
}

// Name returns the translated name of a declared variable, or the declared
// name itself if translation kept it.
func (c *Compiled) Name(declared string) string {
	if n, ok := c.Names[declared]; ok && n != "" {
		return n
	}
	return declared
}

// Compile translates both stages. gles selects ESSL output instead of
// desktop GLSL 4.10.
func Compile(ctx context.Context, vertexSrc, fragmentSrc string, gles bool) (*Compiled, error) {
	t, err := Get(ctx)
	if err != nil {
		return nil, &shader.CompileError{Stage: "init", Err: err}
	}
	format := gst.OutputFormatGLSL410
	if gles {
		format = gst.OutputFormatESSL
	}

	vs, err := t.TranslateShader(vertexSrc, "vertex", gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, &shader.CompileError{Stage: "vertex", Err: err}
	}
	fs, err := t.TranslateShader(fragmentSrc, "fragment", gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, &shader.CompileError{Stage: "fragment", Err: err}
	}

	c := &Compiled{
		Vertex:   vs.Code,
		Fragment: fs.Code,
		Names:    make(map[string]string, len(vs.Variables)+len(fs.Variables)),
	}
	for name, v := range vs.Variables {
		c.Names[name] = v.MappedName
	}
	for name, v := range fs.Variables {
		c.Names[name] = v.MappedName
	}
	if err := CheckRequired(c.Names, shader.RequiredUniforms); err != nil {
		return nil, err
	}
	return c, nil
}

// ErrMissingUniform is wrapped by the CompileError CheckRequired returns.
var ErrMissingUniform = errors.New("missing required uniform")

// CheckRequired reports the declared names absent from names.
func CheckRequired(names map[string]string, required []string) error {
	var missing []string
	for _, r := range required {
		if _, ok := names[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &shader.CompileError{
		Stage: "link",
		Log:   fmt.Sprintf("%v", missing),
		Err:   ErrMissingUniform,
	}
}
