// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"github.com/gviegas/hybrid/internal/shader"
	"github.com/gviegas/hybrid/linear"
)

// varying is the output of a vertex program.
type varying struct {
	clip linear.V4
	uv   linear.V2
}

type vertexProgram func(u *uniforms, pos linear.V3, uv linear.V2) varying

type pixelProgram func(c *Context, u *uniforms, uv linear.V2) linear.V4

// uniforms holds the constant buffer data of a draw.
type uniforms struct {
	view  shader.ViewLayout
	proj  shader.ProjLayout
	model shader.ModelLayout

	// Derived from the above.
	mvp linear.M4

	// From the pixel stage's model buffer.
	color linear.V4
}

func (u *uniforms) derive() {
	v := u.view.View()
	p := u.proj.Proj()
	w := u.model.World()
	u.mvp = p.Mul4(v).Mul4(w)
}

var vertexPrograms = map[string]vertexProgram{
	shader.VS: vsScene,
}

var pixelPrograms = map[string]pixelProgram{
	shader.PS:       psTextured,
	shader.PSShadow: psFlat,
}

func vsScene(u *uniforms, pos linear.V3, uv linear.V2) varying {
	return varying{
		clip: u.mvp.Mul4x1(pos.Vec4(1)),
		uv:   uv,
	}
}

func psTextured(c *Context, u *uniforms, uv linear.V2) linear.V4 {
	t := c.sample(shader.TexSlot, shader.SamplerSlot, uv)
	return linear.V4{t[0] * u.color[0], t[1] * u.color[1], t[2] * u.color[2], t[3] * u.color[3]}
}

func psFlat(_ *Context, u *uniforms, _ linear.V2) linear.V4 { return u.color }
