package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goreveal/mesh"
	"github.com/richinsley/goreveal/shader"
	"github.com/richinsley/goreveal/translator"
)

// RenderPass is the linked reveal program and the plane it draws.
type RenderPass struct {
	ShaderProgram uint32
	Transparent   bool

	vao, positionVBO, uvVBO, ebo uint32
	indexCount                   int32

	textureLoc  int32
	timeLoc     int32
	progressLoc int32
	mvpLoc      int32
}

func newRenderPass(compiled *translator.Compiled, geometry mesh.Geometry, material shader.Material) (*RenderPass, error) {
	attribs := map[uint32]string{
		shader.LocationPosition: compiled.Name(shader.AttribPosition),
		shader.LocationUV:       compiled.Name(shader.AttribUV),
	}
	program, err := newProgram(compiled.Vertex, compiled.Fragment, attribs)
	if err != nil {
		return nil, err
	}

	p := &RenderPass{
		ShaderProgram: program,
		Transparent:   material.Transparent,
		indexCount:    int32(len(geometry.Indices)),
	}
	p.textureLoc = uniformLocation(program, compiled.Name(shader.UniformTexture))
	p.timeLoc = uniformLocation(program, compiled.Name(shader.UniformTime))
	p.progressLoc = uniformLocation(program, compiled.Name(shader.UniformProgress))
	p.mvpLoc = uniformLocation(program, compiled.Name(shader.UniformMVP))
	if p.textureLoc < 0 || p.progressLoc < 0 || p.mvpLoc < 0 {
		gl.DeleteProgram(program)
		return nil, &shader.CompileError{Stage: "link", Log: "required uniform optimized out", Err: translator.ErrMissingUniform}
	}

	positionLoc := gl.GetAttribLocation(program, gl.Str(attribs[shader.LocationPosition]+"\x00"))
	uvLoc := gl.GetAttribLocation(program, gl.Str(attribs[shader.LocationUV]+"\x00"))
	if positionLoc < 0 || uvLoc < 0 {
		gl.DeleteProgram(program)
		return nil, &shader.CompileError{Stage: "link", Log: fmt.Sprintf("missing vertex attribute (position %d, uv %d)", positionLoc, uvLoc)}
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)

	gl.GenBuffers(1, &p.positionVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.positionVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(geometry.Positions)*4, gl.Ptr(geometry.Positions), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(uint32(positionLoc))
	gl.VertexAttribPointer(uint32(positionLoc), 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))

	gl.GenBuffers(1, &p.uvVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.uvVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(geometry.UVs)*4, gl.Ptr(geometry.UVs), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(uint32(uvLoc))
	gl.VertexAttribPointer(uint32(uvLoc), 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))

	gl.GenBuffers(1, &p.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, p.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geometry.Indices)*4, gl.Ptr(geometry.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return p, nil
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// Destroy releases the program and buffers.
func (p *RenderPass) Destroy() {
	if p == nil {
		return
	}
	gl.DeleteProgram(p.ShaderProgram)
	gl.DeleteVertexArrays(1, &p.vao)
	buffers := []uint32{p.positionVBO, p.uvVBO, p.ebo}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
}
