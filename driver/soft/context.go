// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"fmt"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/internal/shader"
)

// Number of slots of each binding kind.
const maxSlot = 8

// Stats counts the work done by a Context.
type Stats struct {
	Draws     int
	Triangles int
	Culled    int
	Pixels    int
}

// Context implements driver.Context.
type Context struct {
	dev *Device
	rt  *Swapchain
	vp  driver.Viewport
	top driver.Topology
	vs  *shaderObj
	ps  *shaderObj
	vb  *buffer
	vbo int
	ib  *buffer
	ibo int
	// Indexed by stage bit (0 for vertex, 1 for pixel).
	cb   [2][maxSlot]*buffer
	tex  [maxSlot]*texture
	splr [maxSlot]*samplerState

	blend     driver.BlendDesc
	blendMask uint32
	depth     driver.DepthStencilDesc
	raster    driver.RasterizerDesc

	events []string
	stats  Stats
}

func newContext(dev *Device) *Context {
	c := &Context{dev: dev}
	c.resetBlend()
	c.depth = driver.DefaultDepth()
	c.raster = driver.DefaultRasterizer()
	return c
}

func (c *Context) resetBlend() {
	c.blend = driver.BlendDesc{}
	c.blendMask = ^uint32(0)
}

func invalid(method, reason string) { driver.Invalid(driverName, method, reason) }

// Stats returns the accumulated statistics.
func (c *Context) Stats() Stats { return c.stats }

// ResetStats zeroes the accumulated statistics.
func (c *Context) ResetStats() { c.stats = Stats{} }

// SetRenderTarget implements driver.Context.
func (c *Context) SetRenderTarget(sc driver.Swapchain) {
	s, ok := sc.(*Swapchain)
	if !ok || !s.alive(c) {
		invalid("SetRenderTarget", "not a live swapchain")
		return
	}
	c.rt = s
	if c.vp.Width == 0 || c.vp.Height == 0 {
		c.vp = driver.Viewport{Width: float32(s.Width()), Height: float32(s.Height()), Zfar: 1}
	}
}

// ClearRenderTarget implements driver.Context.
func (c *Context) ClearRenderTarget(color [4]float32) {
	if c.rt == nil || c.rt.dead {
		invalid("ClearRenderTarget", "no render target")
		return
	}
	var px [4]uint8
	for i := range px {
		px[i] = unorm(color[i])
	}
	pix := c.rt.back.Pix
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], px[:])
	}
}

// ClearDepth implements driver.Context.
func (c *Context) ClearDepth(depth float32) {
	if c.rt == nil || c.rt.dead {
		invalid("ClearDepth", "no render target")
		return
	}
	for i := range c.rt.depth {
		c.rt.depth[i] = depth
	}
}

// SetViewport implements driver.Context.
func (c *Context) SetViewport(vp driver.Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 || vp.Znear > vp.Zfar {
		invalid("SetViewport", fmt.Sprintf("bad viewport %+v", vp))
		return
	}
	c.vp = vp
}

// SetTopology implements driver.Context.
func (c *Context) SetTopology(top driver.Topology) {
	if top != driver.TTriangle && top != driver.TLine {
		invalid("SetTopology", fmt.Sprintf("bad topology %d", top))
		return
	}
	c.top = top
}

// SetShader implements driver.Context.
func (c *Context) SetShader(s driver.Shader) {
	sh, ok := s.(*shaderObj)
	if !ok || !sh.alive(c) {
		invalid("SetShader", "not a live shader")
		return
	}
	if sh.stage == driver.SVertex {
		c.vs = sh
	} else {
		c.ps = sh
	}
}

func (c *Context) liveBuffer(method string, buf driver.Buffer, usage driver.Usage) *buffer {
	b, ok := buf.(*buffer)
	switch {
	case !ok || !b.alive(c):
		invalid(method, "not a live buffer")
		return nil
	case b.usage != usage:
		invalid(method, "buffer usage is "+b.usage.String())
		return nil
	}
	return b
}

// SetVertexBuffer implements driver.Context.
func (c *Context) SetVertexBuffer(buf driver.Buffer, off int) {
	if b := c.liveBuffer("SetVertexBuffer", buf, driver.UVertex); b != nil {
		c.vb, c.vbo = b, off
	}
}

// SetIndexBuffer implements driver.Context.
func (c *Context) SetIndexBuffer(buf driver.Buffer, off int) {
	if b := c.liveBuffer("SetIndexBuffer", buf, driver.UIndex); b != nil {
		c.ib, c.ibo = b, off
	}
}

// SetConstantBuffer implements driver.Context.
func (c *Context) SetConstantBuffer(stages driver.Stage, slot int, buf driver.Buffer) {
	if slot < 0 || slot >= maxSlot {
		invalid("SetConstantBuffer", fmt.Sprintf("slot %d out of range", slot))
		return
	}
	b := c.liveBuffer("SetConstantBuffer", buf, driver.UConstant)
	if b == nil {
		return
	}
	if stages&driver.SVertex != 0 {
		c.cb[0][slot] = b
	}
	if stages&driver.SPixel != 0 {
		c.cb[1][slot] = b
	}
}

// SetShaderResource implements driver.Context.
func (c *Context) SetShaderResource(slot int, tex driver.Texture) {
	if slot < 0 || slot >= maxSlot {
		invalid("SetShaderResource", fmt.Sprintf("slot %d out of range", slot))
		return
	}
	if tex == nil {
		c.tex[slot] = nil
		return
	}
	t, ok := tex.(*texture)
	if !ok || !t.alive(c) {
		invalid("SetShaderResource", "not a live texture")
		return
	}
	c.tex[slot] = t
}

// SetSampler implements driver.Context.
func (c *Context) SetSampler(slot int, s driver.SamplerState) {
	if slot < 0 || slot >= maxSlot {
		invalid("SetSampler", fmt.Sprintf("slot %d out of range", slot))
		return
	}
	if s == nil {
		c.splr[slot] = nil
		return
	}
	ss, ok := s.(*samplerState)
	if !ok || !ss.alive(c) {
		invalid("SetSampler", "not a live sampler state")
		return
	}
	c.splr[slot] = ss
}

// SetBlendState implements driver.Context.
// The blend factor is not used by any blend factor
// this driver supports.
func (c *Context) SetBlendState(s driver.BlendState, _ [4]float32, mask uint32) {
	if s == nil {
		c.resetBlend()
		return
	}
	bs, ok := s.(*blendState)
	if !ok || !bs.alive(c) {
		invalid("SetBlendState", "not a live blend state")
		return
	}
	c.blend = bs.desc
	c.blendMask = mask
}

// SetDepthStencilState implements driver.Context.
func (c *Context) SetDepthStencilState(s driver.DepthStencilState, _ uint32) {
	if s == nil {
		c.depth = driver.DefaultDepth()
		return
	}
	ds, ok := s.(*depthState)
	if !ok || !ds.alive(c) {
		invalid("SetDepthStencilState", "not a live depth/stencil state")
		return
	}
	c.depth = ds.desc
}

// SetRasterizerState implements driver.Context.
func (c *Context) SetRasterizerState(s driver.RasterizerState) {
	if s == nil {
		c.raster = driver.DefaultRasterizer()
		return
	}
	rs, ok := s.(*rasterState)
	if !ok || !rs.alive(c) {
		invalid("SetRasterizerState", "not a live rasterizer state")
		return
	}
	c.raster = rs.desc
}

// UpdateBuffer implements driver.Context.
func (c *Context) UpdateBuffer(buf driver.Buffer, data []byte) {
	b, ok := buf.(*buffer)
	switch {
	case !ok || !b.alive(c):
		invalid("UpdateBuffer", "not a live buffer")
	case len(data) > b.size:
		invalid("UpdateBuffer", fmt.Sprintf("%d bytes exceed buffer size %d", len(data), b.size))
	default:
		copy(b.data, data)
	}
}

// BeginEvent implements driver.Context.
func (c *Context) BeginEvent(name string) { c.events = append(c.events, name) }

// EndEvent implements driver.Context.
func (c *Context) EndEvent() {
	if len(c.events) == 0 {
		invalid("EndEvent", "no open event")
		return
	}
	c.events = c.events[:len(c.events)-1]
}

// uniforms fetches the constant buffer data of both
// stages.
// The pixel stage only reads the model color.
func (c *Context) uniforms(u *uniforms) bool {
	cb := &c.cb[0]
	for _, x := range [...]struct {
		slot int
		dst  []float32
	}{
		{shader.ViewSlot, u.view[:]},
		{shader.ProjSlot, u.proj[:]},
		{shader.ModelSlot, u.model[:]},
	} {
		b := cb[x.slot]
		if b == nil || b.dead || !b.floats(x.dst, 0) {
			return false
		}
	}
	var pm shader.ModelLayout
	if b := c.cb[1][shader.ModelSlot]; b == nil || b.dead || !b.floats(pm[:], 0) {
		return false
	}
	u.derive()
	u.color = pm.Color()
	return true
}
