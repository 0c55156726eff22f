// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/internal/shader"
)

// Maximum buffer/texture size in bytes.
const maxAlloc = 1 << 28

type resource struct {
	dev  *Device
	dead bool
}

func (r *resource) init(dev *Device) {
	r.dev = dev
	dev.live++
}

// release marks r as destroyed.
// It returns false if r had already been destroyed.
func (r *resource) release() bool {
	if r.dead {
		return false
	}
	r.dead = true
	r.dev.live--
	return true
}

// alive returns whether r can be used with c.
func (r *resource) alive(c *Context) bool { return !r.dead && r.dev == c.dev }

type buffer struct {
	resource
	usage  driver.Usage
	size   int
	stride int
	data   []byte
}

// NewBuffer implements driver.Device.
func (d *Device) NewBuffer(desc *driver.BufferDesc) (driver.Buffer, error) {
	if err := check(d, desc); err != nil {
		return nil, err
	}
	switch {
	case desc.Usage < driver.UVertex || desc.Usage > driver.UConstant:
		return nil, fmt.Errorf("%w: buffer usage %d", driver.ErrInvalidDesc, desc.Usage)
	case desc.Size <= 0 || desc.Size < len(desc.Data):
		return nil, fmt.Errorf("%w: buffer size %d", driver.ErrInvalidDesc, desc.Size)
	case desc.Size > maxAlloc:
		return nil, driver.ErrNoDeviceMemory
	case desc.Stride < 0:
		return nil, fmt.Errorf("%w: buffer stride %d", driver.ErrInvalidDesc, desc.Stride)
	}
	b := &buffer{
		usage:  desc.Usage,
		size:   desc.Size,
		stride: desc.Stride,
		data:   alignedBytes(desc.Size),
	}
	copy(b.data, desc.Data)
	b.init(d)
	return b, nil
}

// alignedBytes allocates n bytes with 4-byte alignment.
func alignedBytes(n int) []byte {
	u := make([]uint32, (n+3)/4)
	return unsafe.Slice((*byte)(unsafe.Pointer(&u[0])), len(u)*4)[:n]
}

func (b *buffer) Destroy() {
	if b.release() {
		b.data = nil
	}
}

func (b *buffer) Usage() driver.Usage { return b.usage }
func (b *buffer) Size() int           { return b.size }
func (b *buffer) Stride() int         { return b.stride }

// floats decodes n float32 values starting at off.
func (b *buffer) floats(dst []float32, off int) bool {
	if off < 0 || off+len(dst)*4 > len(b.data) {
		return false
	}
	shader.Decode(dst, b.data[off:])
	return true
}

func (b *buffer) index(i int) (uint32, bool) {
	off := i * shader.IndexSize
	if i < 0 || off+4 > len(b.data) {
		return 0, false
	}
	d := b.data[off:]
	return uint32(d[0]) | uint32(d[1])<<8 | uint32(d[2])<<16 | uint32(d[3])<<24, true
}

type texture struct {
	resource
	img *image.RGBA
}

// NewTexture implements driver.Device.
func (d *Device) NewTexture(desc *driver.TextureDesc) (driver.Texture, error) {
	if err := check(d, desc); err != nil {
		return nil, err
	}
	n := desc.Width * desc.Height * 4
	switch {
	case desc.Width <= 0 || desc.Height <= 0:
		return nil, fmt.Errorf("%w: texture size %dx%d", driver.ErrInvalidDesc, desc.Width, desc.Height)
	case n > maxAlloc:
		return nil, driver.ErrNoDeviceMemory
	case desc.Data != nil && len(desc.Data) != n:
		return nil, fmt.Errorf("%w: texture data length %d", driver.ErrInvalidDesc, len(desc.Data))
	}
	t := &texture{img: image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))}
	copy(t.img.Pix, desc.Data)
	t.init(d)
	return t, nil
}

func (t *texture) Destroy() {
	if t.release() {
		t.img = nil
	}
}

func (t *texture) Width() int  { return t.img.Rect.Dx() }
func (t *texture) Height() int { return t.img.Rect.Dy() }

type shaderObj struct {
	resource
	stage driver.Stage
	entry string
	vs    vertexProgram
	ps    pixelProgram
}

// NewShader implements driver.Device.
// The entry points of the default effect are built in;
// desc.Path and desc.Code are not interpreted.
func (d *Device) NewShader(desc *driver.ShaderDesc) (driver.Shader, error) {
	if err := check(d, desc); err != nil {
		return nil, err
	}
	s := &shaderObj{stage: desc.Stage, entry: desc.Entry}
	switch desc.Stage {
	case driver.SVertex:
		if s.vs = vertexPrograms[desc.Entry]; s.vs == nil {
			return nil, fmt.Errorf("%w: %q (vertex)", driver.ErrUnknownShader, desc.Entry)
		}
	case driver.SPixel:
		if s.ps = pixelPrograms[desc.Entry]; s.ps == nil {
			return nil, fmt.Errorf("%w: %q (pixel)", driver.ErrUnknownShader, desc.Entry)
		}
	default:
		return nil, fmt.Errorf("%w: shader stage %d", driver.ErrInvalidDesc, desc.Stage)
	}
	s.init(d)
	return s, nil
}

func (s *shaderObj) Destroy()            { s.release() }
func (s *shaderObj) Stage() driver.Stage { return s.stage }
func (s *shaderObj) Entry() string       { return s.entry }

type blendState struct {
	resource
	desc driver.BlendDesc
}

// NewBlendState implements driver.Device.
func (d *Device) NewBlendState(desc *driver.BlendDesc) (driver.BlendState, error) {
	if err := check(d, desc); err != nil {
		return nil, err
	}
	s := &blendState{desc: *desc}
	s.init(d)
	return s, nil
}

func (s *blendState) Destroy()               { s.release() }
func (s *blendState) Desc() driver.BlendDesc { return s.desc }

type depthState struct {
	resource
	desc driver.DepthStencilDesc
}

// NewDepthStencilState implements driver.Device.
func (d *Device) NewDepthStencilState(desc *driver.DepthStencilDesc) (driver.DepthStencilState, error) {
	if err := check(d, desc); err != nil {
		return nil, err
	}
	s := &depthState{desc: *desc}
	s.init(d)
	return s, nil
}

func (s *depthState) Destroy()                      { s.release() }
func (s *depthState) Desc() driver.DepthStencilDesc { return s.desc }

type rasterState struct {
	resource
	desc driver.RasterizerDesc
}

// NewRasterizerState implements driver.Device.
func (d *Device) NewRasterizerState(desc *driver.RasterizerDesc) (driver.RasterizerState, error) {
	if err := check(d, desc); err != nil {
		return nil, err
	}
	s := &rasterState{desc: *desc}
	s.init(d)
	return s, nil
}

func (s *rasterState) Destroy()                    { s.release() }
func (s *rasterState) Desc() driver.RasterizerDesc { return s.desc }

type samplerState struct {
	resource
	desc driver.SamplerDesc
}

// NewSamplerState implements driver.Device.
func (d *Device) NewSamplerState(desc *driver.SamplerDesc) (driver.SamplerState, error) {
	if err := check(d, desc); err != nil {
		return nil, err
	}
	s := &samplerState{desc: *desc}
	s.init(d)
	return s, nil
}

func (s *samplerState) Destroy()                 { s.release() }
func (s *samplerState) Desc() driver.SamplerDesc { return s.desc }
