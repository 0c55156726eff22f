// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Device is the main interface to an underlying driver
// implementation.
// It is used to create resources and state objects.
// A Device is obtained from a call to Driver.Open.
type Device interface {
	// Driver returns the Driver that owns the Device.
	Driver() Driver

	// Context returns the immediate context.
	// The same Context is returned on every call.
	Context() Context

	// NewBuffer creates a new buffer.
	NewBuffer(desc *BufferDesc) (Buffer, error)

	// NewTexture creates a new 2D texture.
	NewTexture(desc *TextureDesc) (Texture, error)

	// NewShader creates a new shader.
	NewShader(desc *ShaderDesc) (Shader, error)

	// NewBlendState creates a new blend state.
	NewBlendState(desc *BlendDesc) (BlendState, error)

	// NewDepthStencilState creates a new depth/stencil
	// state.
	NewDepthStencilState(desc *DepthStencilDesc) (DepthStencilState, error)

	// NewRasterizerState creates a new rasterizer state.
	NewRasterizerState(desc *RasterizerDesc) (RasterizerState, error)

	// NewSamplerState creates a new sampler state.
	NewSamplerState(desc *SamplerDesc) (SamplerState, error)

	// NewSwapchain creates a new swapchain.
	NewSwapchain(width, height int) (Swapchain, error)
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may hold memory that
// is not managed by GC, so Destroy must be called explicitly.
// Calling Destroy more than once has no effect.
type Destroyer interface {
	Destroy()
}

// Context is the interface that defines the command
// submission surface.
// Commands execute in the order they are issued. State set
// through Set* methods persists until replaced.
// Invalid arguments (e.g., nil or destroyed resources) are
// logged and the call is ignored. Passing a nil state object
// to SetBlendState, SetDepthStencilState or
// SetRasterizerState restores the default state.
type Context interface {
	// SetRenderTarget sets the swapchain whose back buffer
	// is the target of clear and draw commands.
	SetRenderTarget(sc Swapchain)

	// ClearRenderTarget clears the back buffer of the
	// current render target.
	ClearRenderTarget(color [4]float32)

	// ClearDepth clears the depth buffer of the current
	// render target.
	ClearDepth(depth float32)

	// SetViewport sets the viewport.
	SetViewport(vp Viewport)

	// SetTopology sets the primitive topology.
	SetTopology(top Topology)

	// SetShader binds s to the stage it was created for.
	SetShader(s Shader)

	// SetVertexBuffer sets the vertex buffer.
	SetVertexBuffer(buf Buffer, off int)

	// SetIndexBuffer sets the index buffer.
	// Index data is made of 32-bit unsigned integers.
	SetIndexBuffer(buf Buffer, off int)

	// SetConstantBuffer binds buf to slot for every stage
	// set in stages.
	SetConstantBuffer(stages Stage, slot int, buf Buffer)

	// SetShaderResource binds a texture to a pixel stage
	// slot. A nil tex unbinds the slot.
	SetShaderResource(slot int, tex Texture)

	// SetSampler binds a sampler state to a pixel stage
	// slot.
	SetSampler(slot int, s SamplerState)

	// SetBlendState sets the blend state.
	SetBlendState(s BlendState, factor [4]float32, mask uint32)

	// SetDepthStencilState sets the depth/stencil state.
	SetDepthStencilState(s DepthStencilState, ref uint32)

	// SetRasterizerState sets the rasterizer state.
	SetRasterizerState(s RasterizerState)

	// UpdateBuffer replaces the contents of buf with data.
	// len(data) must not exceed buf.Size().
	UpdateBuffer(buf Buffer, data []byte)

	// DrawIndexed draws indexed primitives.
	DrawIndexed(idxCount, startIdx, baseVert int)

	// BeginEvent opens a named group of commands.
	// Implementations that do not record commands may
	// ignore it.
	BeginEvent(name string)

	// EndEvent closes the group opened by the last call
	// to BeginEvent.
	EndEvent()
}

// Usage is the type of buffer usages.
type Usage int

// Buffer usages.
const (
	UVertex Usage = iota
	UIndex
	UConstant
)

// String implements fmt.Stringer.
func (u Usage) String() string {
	switch u {
	case UVertex:
		return "vertex"
	case UIndex:
		return "index"
	case UConstant:
		return "constant"
	default:
		return "!driver.Usage"
	}
}

// BufferDesc describes a buffer.
// If Data is non-nil, it is copied into the buffer.
// Size must be at least len(Data).
type BufferDesc struct {
	Usage  Usage
	Size   int
	Stride int
	Data   []byte
}

// Buffer is the interface that defines a GPU buffer.
type Buffer interface {
	Destroyer

	// Usage returns the buffer usage.
	Usage() Usage

	// Size returns the size of the buffer in bytes.
	Size() int

	// Stride returns the element stride in bytes.
	Stride() int
}

// TextureDesc describes a 2D texture.
// Data contains Width*Height RGBA8 texels.
type TextureDesc struct {
	Width  int
	Height int
	Data   []byte
}

// Texture is the interface that defines a 2D texture.
type Texture interface {
	Destroyer
	Width() int
	Height() int
}

// Stage is the type of shader stages.
// Values can be combined to describe a set of stages.
type Stage int

// Shader stages.
const (
	SVertex Stage = 1 << iota
	SPixel
)

// ShaderDesc describes a shader.
// Entry names the entry point in the effect described by
// Path/Code. Which entry points exist is up to the driver.
type ShaderDesc struct {
	Stage Stage
	Path  string
	Entry string
	Code  []byte
}

// Shader is the interface that defines a shader.
type Shader interface {
	Destroyer
	Stage() Stage
	Entry() string
}

// BlendFac is the type of blend factors.
type BlendFac int

// Blend factors.
const (
	BZero BlendFac = iota
	BOne
	BSrcAlpha
	BInvSrcAlpha
)

// BlendDesc describes a blend state.
type BlendDesc struct {
	Enable   bool
	SrcFac   BlendFac
	DstFac   BlendFac
	SrcAlpha BlendFac
	DstAlpha BlendFac
}

// AlphaBlend returns the description of standard
// alpha blending.
func AlphaBlend() BlendDesc {
	return BlendDesc{
		Enable:   true,
		SrcFac:   BSrcAlpha,
		DstFac:   BInvSrcAlpha,
		SrcAlpha: BOne,
		DstAlpha: BZero,
	}
}

// BlendState is the interface that defines a blend state.
type BlendState interface {
	Destroyer
	Desc() BlendDesc
}

// CmpFunc is the type of comparison functions.
type CmpFunc int

// Comparison functions.
const (
	CNever CmpFunc = iota
	CLess
	CEqual
	CLessEqual
	CGreater
	CAlways
)

// DepthStencilDesc describes a depth/stencil state.
type DepthStencilDesc struct {
	DepthTest  bool
	DepthWrite bool
	DepthFunc  CmpFunc
	Stencil    bool
}

// DefaultDepth returns the description of the default
// depth/stencil state.
func DefaultDepth() DepthStencilDesc {
	return DepthStencilDesc{
		DepthTest:  true,
		DepthWrite: true,
		DepthFunc:  CLess,
	}
}

// DepthStencilState is the interface that defines a
// depth/stencil state.
type DepthStencilState interface {
	Destroyer
	Desc() DepthStencilDesc
}

// CullMode is the type of cull modes.
type CullMode int

// Cull modes.
const (
	CNone CullMode = iota
	CFront
	CBack
)

// FillMode is the type of triangle fill modes.
type FillMode int

// Fill modes.
const (
	FFill FillMode = iota
	FLines
)

// RasterizerDesc describes a rasterizer state.
type RasterizerDesc struct {
	Fill      FillMode
	Cull      CullMode
	Clockwise bool
	DepthClip bool
}

// DefaultRasterizer returns the description of the
// default rasterizer state.
func DefaultRasterizer() RasterizerDesc {
	return RasterizerDesc{
		Fill:      FFill,
		Cull:      CBack,
		Clockwise: false,
		DepthClip: true,
	}
}

// RasterizerState is the interface that defines a
// rasterizer state.
type RasterizerState interface {
	Destroyer
	Desc() RasterizerDesc
}

// Filter is the type of sampler filters.
type Filter int

// Filters.
const (
	FNearest Filter = iota
	FLinear
)

// AddrMode is the type of sampler address modes.
type AddrMode int

// Address modes.
const (
	AWrap AddrMode = iota
	AMirror
	AClamp
)

// SamplerDesc describes a sampler state.
type SamplerDesc struct {
	Filter Filter
	AddrU  AddrMode
	AddrV  AddrMode
}

// SamplerState is the interface that defines a sampler
// state.
type SamplerState interface {
	Destroyer
	Desc() SamplerDesc
}

// Topology is the type of primitive topologies.
type Topology int

// Primitive topologies.
const (
	TTriangle Topology = iota
	TLine
)

// Viewport defines the bounds of a viewport.
type Viewport struct {
	X, Y, Width, Height, Znear, Zfar float32
}

// Swapchain is the interface that defines a presentable
// set of render targets.
type Swapchain interface {
	Destroyer

	// Width returns the width of the back buffer.
	Width() int

	// Height returns the height of the back buffer.
	Height() int

	// Resize recreates the back and depth buffers.
	Resize(width, height int) error

	// Present presents the back buffer.
	Present() error
}
