// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package trace records the commands issued to a
// driver.Context.
// A Recorder forwards every call to an optional inner
// Context, so it can be placed in front of a real backend
// or used alone as a test double.
package trace

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/internal/shader"
)

// Op identifies a Context method.
type Op int

// Context methods.
const (
	OpSetRenderTarget Op = iota
	OpClearRenderTarget
	OpClearDepth
	OpSetViewport
	OpSetTopology
	OpSetShader
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpSetConstantBuffer
	OpSetShaderResource
	OpSetSampler
	OpSetBlendState
	OpSetDepthStencilState
	OpSetRasterizerState
	OpUpdateBuffer
	OpDrawIndexed
	OpBeginEvent
	OpEndEvent
)

var opNames = [...]string{
	OpSetRenderTarget:      "SetRenderTarget",
	OpClearRenderTarget:    "ClearRenderTarget",
	OpClearDepth:           "ClearDepth",
	OpSetViewport:          "SetViewport",
	OpSetTopology:          "SetTopology",
	OpSetShader:            "SetShader",
	OpSetVertexBuffer:      "SetVertexBuffer",
	OpSetIndexBuffer:       "SetIndexBuffer",
	OpSetConstantBuffer:    "SetConstantBuffer",
	OpSetShaderResource:    "SetShaderResource",
	OpSetSampler:           "SetSampler",
	OpSetBlendState:        "SetBlendState",
	OpSetDepthStencilState: "SetDepthStencilState",
	OpSetRasterizerState:   "SetRasterizerState",
	OpUpdateBuffer:         "UpdateBuffer",
	OpDrawIndexed:          "DrawIndexed",
	OpBeginEvent:           "BeginEvent",
	OpEndEvent:             "EndEvent",
}

// String implements fmt.Stringer.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "!trace.Op"
	}
	return opNames[op]
}

// Command is a recorded call.
type Command struct {
	Op Op

	// Event is the path of open events when the command
	// was issued, separated by '/'.
	Event string

	// Object is the argument of Set* commands and the
	// buffer of UpdateBuffer.
	Object any
	Slot   int
	Stages driver.Stage

	// Data is a copy of the UpdateBuffer data.
	Data []byte

	// Draw is set for DrawIndexed.
	Draw *Draw
}

// Draw describes a DrawIndexed call along with the
// state bound when it was issued.
type Draw struct {
	IdxCount int
	StartIdx int
	BaseVert int

	VS, PS       driver.Shader
	VertexBuffer driver.Buffer
	IndexBuffer  driver.Buffer
	// Constant buffers bound to the vertex and pixel
	// stages.
	Constant     [shader.ModelSlot + 1]driver.Buffer
	PSConstant   [shader.ModelSlot + 1]driver.Buffer
	Texture      driver.Texture
	Blend        driver.BlendState
	DepthStencil driver.DepthStencilState
	Rasterizer   driver.RasterizerState
	Topology     driver.Topology
	Event        string
}

// Recorder implements driver.Context.
type Recorder struct {
	inner  driver.Context
	cmds   []Command
	events []string
	bound  Draw
}

// New creates a Recorder that forwards to inner.
// inner can be nil.
func New(inner driver.Context) *Recorder { return &Recorder{inner: inner} }

// Commands returns the recorded commands.
func (r *Recorder) Commands() []Command { return r.cmds }

// Draws returns the recorded draws in submission order.
func (r *Recorder) Draws() []Draw {
	var d []Draw
	for i := range r.cmds {
		if r.cmds[i].Draw != nil {
			d = append(d, *r.cmds[i].Draw)
		}
	}
	return d
}

// Updates returns the data of every UpdateBuffer call that
// targeted buf, in submission order.
func (r *Recorder) Updates(buf driver.Buffer) [][]byte {
	var u [][]byte
	for i := range r.cmds {
		if r.cmds[i].Op == OpUpdateBuffer && r.cmds[i].Object == buf {
			u = append(u, r.cmds[i].Data)
		}
	}
	return u
}

// Reset discards the recorded commands.
// Bound state is kept.
func (r *Recorder) Reset() { r.cmds = r.cmds[:0] }

func (r *Recorder) record(c Command) {
	c.Event = strings.Join(r.events, "/")
	r.cmds = append(r.cmds, c)
}

// SetRenderTarget implements driver.Context.
func (r *Recorder) SetRenderTarget(sc driver.Swapchain) {
	r.record(Command{Op: OpSetRenderTarget, Object: sc})
	if r.inner != nil {
		r.inner.SetRenderTarget(sc)
	}
}

// ClearRenderTarget implements driver.Context.
func (r *Recorder) ClearRenderTarget(color [4]float32) {
	r.record(Command{Op: OpClearRenderTarget, Object: color})
	if r.inner != nil {
		r.inner.ClearRenderTarget(color)
	}
}

// ClearDepth implements driver.Context.
func (r *Recorder) ClearDepth(depth float32) {
	r.record(Command{Op: OpClearDepth, Object: depth})
	if r.inner != nil {
		r.inner.ClearDepth(depth)
	}
}

// SetViewport implements driver.Context.
func (r *Recorder) SetViewport(vp driver.Viewport) {
	r.record(Command{Op: OpSetViewport, Object: vp})
	if r.inner != nil {
		r.inner.SetViewport(vp)
	}
}

// SetTopology implements driver.Context.
func (r *Recorder) SetTopology(top driver.Topology) {
	r.bound.Topology = top
	r.record(Command{Op: OpSetTopology, Object: top})
	if r.inner != nil {
		r.inner.SetTopology(top)
	}
}

// SetShader implements driver.Context.
func (r *Recorder) SetShader(s driver.Shader) {
	if s != nil {
		switch s.Stage() {
		case driver.SVertex:
			r.bound.VS = s
		case driver.SPixel:
			r.bound.PS = s
		}
	}
	r.record(Command{Op: OpSetShader, Object: s})
	if r.inner != nil {
		r.inner.SetShader(s)
	}
}

// SetVertexBuffer implements driver.Context.
func (r *Recorder) SetVertexBuffer(buf driver.Buffer, off int) {
	r.bound.VertexBuffer = buf
	r.record(Command{Op: OpSetVertexBuffer, Object: buf, Slot: off})
	if r.inner != nil {
		r.inner.SetVertexBuffer(buf, off)
	}
}

// SetIndexBuffer implements driver.Context.
func (r *Recorder) SetIndexBuffer(buf driver.Buffer, off int) {
	r.bound.IndexBuffer = buf
	r.record(Command{Op: OpSetIndexBuffer, Object: buf, Slot: off})
	if r.inner != nil {
		r.inner.SetIndexBuffer(buf, off)
	}
}

// SetConstantBuffer implements driver.Context.
func (r *Recorder) SetConstantBuffer(stages driver.Stage, slot int, buf driver.Buffer) {
	if slot >= 0 && slot < len(r.bound.Constant) {
		if stages&driver.SVertex != 0 {
			r.bound.Constant[slot] = buf
		}
		if stages&driver.SPixel != 0 {
			r.bound.PSConstant[slot] = buf
		}
	}
	r.record(Command{Op: OpSetConstantBuffer, Object: buf, Slot: slot, Stages: stages})
	if r.inner != nil {
		r.inner.SetConstantBuffer(stages, slot, buf)
	}
}

// SetShaderResource implements driver.Context.
func (r *Recorder) SetShaderResource(slot int, tex driver.Texture) {
	if slot == shader.TexSlot {
		r.bound.Texture = tex
	}
	r.record(Command{Op: OpSetShaderResource, Object: tex, Slot: slot})
	if r.inner != nil {
		r.inner.SetShaderResource(slot, tex)
	}
}

// SetSampler implements driver.Context.
func (r *Recorder) SetSampler(slot int, s driver.SamplerState) {
	r.record(Command{Op: OpSetSampler, Object: s, Slot: slot})
	if r.inner != nil {
		r.inner.SetSampler(slot, s)
	}
}

// SetBlendState implements driver.Context.
func (r *Recorder) SetBlendState(s driver.BlendState, factor [4]float32, mask uint32) {
	r.bound.Blend = s
	r.record(Command{Op: OpSetBlendState, Object: s})
	if r.inner != nil {
		r.inner.SetBlendState(s, factor, mask)
	}
}

// SetDepthStencilState implements driver.Context.
func (r *Recorder) SetDepthStencilState(s driver.DepthStencilState, ref uint32) {
	r.bound.DepthStencil = s
	r.record(Command{Op: OpSetDepthStencilState, Object: s})
	if r.inner != nil {
		r.inner.SetDepthStencilState(s, ref)
	}
}

// SetRasterizerState implements driver.Context.
func (r *Recorder) SetRasterizerState(s driver.RasterizerState) {
	r.bound.Rasterizer = s
	r.record(Command{Op: OpSetRasterizerState, Object: s})
	if r.inner != nil {
		r.inner.SetRasterizerState(s)
	}
}

// UpdateBuffer implements driver.Context.
func (r *Recorder) UpdateBuffer(buf driver.Buffer, data []byte) {
	r.record(Command{Op: OpUpdateBuffer, Object: buf, Data: append([]byte(nil), data...)})
	if r.inner != nil {
		r.inner.UpdateBuffer(buf, data)
	}
}

// DrawIndexed implements driver.Context.
func (r *Recorder) DrawIndexed(idxCount, startIdx, baseVert int) {
	d := r.bound
	d.IdxCount, d.StartIdx, d.BaseVert = idxCount, startIdx, baseVert
	d.Event = strings.Join(r.events, "/")
	r.record(Command{Op: OpDrawIndexed, Draw: &d})
	if r.inner != nil {
		r.inner.DrawIndexed(idxCount, startIdx, baseVert)
	}
}

// BeginEvent implements driver.Context.
func (r *Recorder) BeginEvent(name string) {
	r.record(Command{Op: OpBeginEvent, Object: name})
	r.events = append(r.events, name)
	if r.inner != nil {
		r.inner.BeginEvent(name)
	}
}

// EndEvent implements driver.Context.
func (r *Recorder) EndEvent() {
	if len(r.events) > 0 {
		r.events = r.events[:len(r.events)-1]
	}
	r.record(Command{Op: OpEndEvent})
	if r.inner != nil {
		r.inner.EndEvent()
	}
}

// Device wraps a driver.Device so that its Context is a
// Recorder.
type Device struct {
	driver.Device
	rec *Recorder
}

// Wrap creates a Device whose Context records every call
// before forwarding it to dev's own Context.
func Wrap(dev driver.Device) *Device {
	return &Device{Device: dev, rec: New(dev.Context())}
}

// Context implements driver.Device.
func (d *Device) Context() driver.Context { return d.rec }

// Recorder returns the Recorder used as d's Context.
func (d *Device) Recorder() *Recorder { return d.rec }

// entry is the serialized form of a Command.
type entry struct {
	Op     string `yaml:"op"`
	Event  string `yaml:"event,omitempty"`
	Object string `yaml:"object,omitempty"`
	Slot   *int   `yaml:"slot,omitempty"`
	Count  int    `yaml:"count,omitempty"`
	Bytes  int    `yaml:"bytes,omitempty"`
}

// WriteTo writes the recorded commands to w as YAML.
// Objects are named by kind and order of first use.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	ids := make(map[any]string)
	counts := make(map[string]int)
	name := func(x any) string {
		if x == nil {
			return "nil"
		}
		var kind string
		switch x := x.(type) {
		case driver.Shader:
			kind = "shader(" + x.Entry() + ")"
		case driver.Buffer:
			kind = x.Usage().String() + "-buffer"
		case driver.Texture:
			kind = "texture"
		case driver.Swapchain:
			kind = "swapchain"
		case driver.BlendState:
			kind = "blend"
		case driver.DepthStencilState:
			kind = "depth-stencil"
		case driver.RasterizerState:
			kind = "rasterizer"
		case driver.SamplerState:
			kind = "sampler"
		default:
			return fmt.Sprint(x)
		}
		if id, ok := ids[x]; ok {
			return id
		}
		id := fmt.Sprintf("%s#%d", kind, counts[kind])
		counts[kind]++
		ids[x] = id
		return id
	}
	out := make([]entry, len(r.cmds))
	for i := range r.cmds {
		c := &r.cmds[i]
		e := entry{Op: c.Op.String(), Event: c.Event}
		switch c.Op {
		case OpDrawIndexed:
			e.Count = c.Draw.IdxCount
			e.Object = name(c.Draw.VertexBuffer)
		case OpUpdateBuffer:
			e.Object = name(c.Object)
			e.Bytes = len(c.Data)
		case OpSetConstantBuffer, OpSetShaderResource, OpSetSampler:
			e.Object = name(c.Object)
			slot := c.Slot
			e.Slot = &slot
		case OpEndEvent:
		default:
			e.Object = name(c.Object)
		}
		out[i] = e
	}
	cw := &countWriter{w: w}
	enc := yaml.NewEncoder(cw)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return cw.n, err
	}
	err := enc.Close()
	return cw.n, err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
