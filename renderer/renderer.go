package renderer

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goreveal/graphics"
	"github.com/richinsley/goreveal/logging"
	"github.com/richinsley/goreveal/mesh"
	"github.com/richinsley/goreveal/scene"
	"github.com/richinsley/goreveal/shader"
	"github.com/richinsley/goreveal/translator"
	"github.com/richinsley/goreveal/uniforms"
)

// gl.Init must run once per process.
var glInitOnce sync.Once

type Renderer struct {
	context           graphics.Context
	pass              *RenderPass
	offscreenRenderer *OffscreenRenderer
	uniforms          uniforms.UniformSet
	background        [4]float32
	width             int
	height            int
	recordMode        bool
}

// NewRenderer initializes GL on ctx. In record mode frames are drawn into a
// width x height offscreen framebuffer instead of the window.
func NewRenderer(ctx graphics.Context, width, height int, recordMode bool) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		width:      width,
		height:     height,
		recordMode: recordMode,
		background: [4]float32{0, 0, 0, 1},
	}

	r.context.MakeCurrent()
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	logging.Logger().Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	if recordMode {
		var err error
		r.offscreenRenderer, err = NewOffscreenRenderer(width, height)
		if err != nil {
			return nil, fmt.Errorf("failed to create offscreen renderer: %w", err)
		}
	}
	return r, nil
}

// InitScene translates and links the material and uploads the geometry.
func (r *Renderer) InitScene(ctx context.Context, geometry mesh.Geometry, material shader.Material) error {
	compiled, err := translator.Compile(ctx, material.Vertex, material.Fragment, r.context.IsGLES())
	if err != nil {
		return err
	}
	pass, err := newRenderPass(compiled, geometry, material)
	if err != nil {
		return err
	}
	r.pass.Destroy()
	r.pass = pass
	logging.Logger().Info("Successfully built reveal program", "indices", pass.indexCount, "transparent", pass.Transparent)
	return nil
}

// SetBackground sets the clear color.
func (r *Renderer) SetBackground(c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	r.background = [4]float32{float32(n.R) / 255, float32(n.G) / 255, float32(n.B) / 255, float32(n.A) / 255}
}

// ApplyUniforms writes the uniform set into the program.
func (r *Renderer) ApplyUniforms(u uniforms.UniformSet) {
	r.uniforms = u
	if r.pass == nil {
		return
	}
	gl.UseProgram(r.pass.ShaderProgram)
	if r.pass.timeLoc != -1 {
		gl.Uniform1f(r.pass.timeLoc, u.ElapsedTime)
	}
	gl.Uniform1f(r.pass.progressLoc, u.Progress)
	gl.Uniform1i(r.pass.textureLoc, 0)
}

// Draw renders f into framebuffer fbo (0 is the window).
func (r *Renderer) Draw(f scene.Frame, fbo uint32, width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(r.background[0], r.background[1], r.background[2], r.background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	id := textureID(r.uniforms.Texture)
	if r.pass == nil || !f.Visible || id == 0 || width == 0 || height == 0 {
		return
	}

	if r.pass.Transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	gl.UseProgram(r.pass.ShaderProgram)
	gl.UniformMatrix4fv(r.pass.mvpLoc, 1, false, &f.MVP[0])
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.BindVertexArray(r.pass.vao)
	gl.DrawElements(gl.TRIANGLES, r.pass.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Run is the interactive loop. It returns when the window closes.
func (r *Renderer) Run(s *scene.Scene) {
	logging.Logger().Info("Starting interactive render loop")
	startTime := r.context.Time()
	lastTime := startTime

	for !r.context.ShouldClose() {
		now := r.context.Time()
		dt := time.Duration((now - lastTime) * float64(time.Second))
		lastTime = now

		fbWidth, fbHeight := r.context.GetFramebufferSize()
		f := s.Frame(now-startTime, dt, fbWidth, fbHeight)
		r.Draw(f, 0, fbWidth, fbHeight)
		r.context.EndFrame()
	}
}

// Source is the offscreen frame source for recording.
type Source struct {
	r *Renderer
	s *scene.Scene
}

// Source returns a recording source drawing s offscreen. Rows come back
// bottom-up, so the encoder must flip them.
func (r *Renderer) Source(s *scene.Scene) (*Source, error) {
	if r.offscreenRenderer == nil {
		return nil, fmt.Errorf("renderer was not created in record mode")
	}
	return &Source{r: r, s: s}, nil
}

func (src *Source) RenderFrame(elapsed float64, dt time.Duration) ([]byte, error) {
	r := src.r
	f := src.s.Frame(elapsed, dt, r.width, r.height)
	r.Draw(f, r.offscreenRenderer.fbo, r.width, r.height)
	return r.offscreenRenderer.ReadPixels()
}

func (r *Renderer) Shutdown() {
	r.pass.Destroy()
	if r.offscreenRenderer != nil {
		r.offscreenRenderer.Destroy()
	}
	r.context.Shutdown()
}

func newProgram(vertexShaderSource, fragmentShaderSource string, attribs map[uint32]string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	for loc, name := range attribs {
		gl.BindAttribLocation(program, loc, gl.Str(name+"\x00"))
	}
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, &shader.CompileError{Stage: "link", Log: strings.TrimRight(log, "\x00")}
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(sh, logLength, nil, gl.Str(logText))
		gl.DeleteShader(sh)
		stage := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			stage = "fragment"
		}
		return 0, &shader.CompileError{Stage: stage, Log: strings.TrimRight(logText, "\x00")}
	}
	return sh, nil
}
