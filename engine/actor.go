// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/ecs"
	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/internal/shader"
	"github.com/gviegas/hybrid/linear"
	"github.com/gviegas/hybrid/mesh"
)

func newActorErr(reason string) error { return errors.New("engine: actor: " + reason) }

var errNoDevice = newActorErr("nil device")

// Actor is an Entity that renders a mesh and, optionally,
// its planar shadow onto the y=0 plane.
// It always has a Transform and a Mesh component.
type Actor struct {
	ecs.Entity

	name string
	guid uuid.UUID
	dev  driver.Device

	xform *ecs.Transform
	mesh  *ecs.Mesh
	texs  []driver.Texture

	model   shader.ModelLayout
	modelCB driver.Buffer
	tint    linear.V4

	blend   driver.BlendState
	raster  driver.RasterizerState
	sampler driver.SamplerState

	castShadow  bool
	shadow      shader.ModelLayout
	shadowPS    driver.Shader
	shadowCB    driver.Buffer
	shadowBlend driver.BlendState
	shadowDepth driver.DepthStencilState

	destroyed bool
}

// NewActor creates a new Actor.
// Every GPU object the Actor needs, other than mesh
// buffers and textures, is created here. If any creation
// fails, the objects created so far are destroyed.
func NewActor(dev driver.Device, name string) (_ *Actor, err error) {
	if dev == nil {
		return nil, errNoDevice
	}
	x := &Actor{
		name: name,
		guid: uuid.New(),
		dev:  dev,
		tint: DefaultTint,
	}
	defer func() {
		if err != nil {
			x.release()
		}
	}()

	cb := driver.BufferDesc{Usage: driver.UConstant, Size: shader.ModelSize}
	if x.modelCB, err = dev.NewBuffer(&cb); err != nil {
		return nil, fmt.Errorf("engine: actor %q: model buffer: %w", name, err)
	}
	if x.blend, err = dev.NewBlendState(&driver.BlendDesc{}); err != nil {
		return nil, fmt.Errorf("engine: actor %q: blend state: %w", name, err)
	}
	rd := driver.DefaultRasterizer()
	if x.raster, err = dev.NewRasterizerState(&rd); err != nil {
		return nil, fmt.Errorf("engine: actor %q: rasterizer state: %w", name, err)
	}
	sd := driver.SamplerDesc{Filter: driver.FLinear, AddrU: driver.AWrap, AddrV: driver.AWrap}
	if x.sampler, err = dev.NewSamplerState(&sd); err != nil {
		return nil, fmt.Errorf("engine: actor %q: sampler state: %w", name, err)
	}
	ps := driver.ShaderDesc{Stage: driver.SPixel, Path: shader.DefaultEffect, Entry: shader.PSShadow}
	if x.shadowPS, err = dev.NewShader(&ps); err != nil {
		return nil, fmt.Errorf("engine: actor %q: shadow shader: %w", name, err)
	}
	if x.shadowCB, err = dev.NewBuffer(&cb); err != nil {
		return nil, fmt.Errorf("engine: actor %q: shadow buffer: %w", name, err)
	}
	bd := driver.AlphaBlend()
	if x.shadowBlend, err = dev.NewBlendState(&bd); err != nil {
		return nil, fmt.Errorf("engine: actor %q: shadow blend state: %w", name, err)
	}
	dd := driver.DepthStencilDesc{DepthTest: true, DepthWrite: false, DepthFunc: driver.CLess}
	if x.shadowDepth, err = dev.NewDepthStencilState(&dd); err != nil {
		return nil, fmt.Errorf("engine: actor %q: shadow depth state: %w", name, err)
	}

	x.Init(0)
	x.xform = ecs.NewTransform()
	x.mesh = ecs.NewMesh(dev)
	if err = x.Add(x.xform); err != nil {
		return nil, err
	}
	if err = x.Add(x.mesh); err != nil {
		return nil, err
	}
	x.model.SetColor(&x.tint)
	x.shadow.SetColor(&ShadowTint)
	return x, nil
}

// Name returns the display name of a.
func (a *Actor) Name() string { return a.name }

// SetName sets the display name of a.
func (a *Actor) SetName(name string) { a.name = name }

// GUID returns the identifier of a in scene files.
func (a *Actor) GUID() uuid.UUID { return a.guid }

// SetGUID replaces the identifier of a.
// It is used when restoring a saved scene.
func (a *Actor) SetGUID(id uuid.UUID) { a.guid = id }

// Transform returns the Transform component of a.
func (a *Actor) Transform() *ecs.Transform { return a.xform }

// Mesh returns the Mesh component of a.
func (a *Actor) Mesh() *ecs.Mesh { return a.mesh }

// Textures returns the number of textures of a.
func (a *Actor) Textures() int { return len(a.texs) }

// Tint returns the color that modulates a's texture.
func (a *Actor) Tint() linear.V4 { return a.tint }

// SetTint sets the color that modulates a's texture.
func (a *Actor) SetTint(c linear.V4) {
	a.tint = c
	a.model.SetColor(&c)
}

// CastShadow returns whether a draws its planar shadow.
func (a *Actor) CastShadow() bool { return a.castShadow }

// SetCastShadow sets whether a draws its planar shadow.
func (a *Actor) SetCastShadow(cast bool) { a.castShadow = cast }

// SetMesh replaces the geometry of a.
// Each element of data becomes a sub-mesh. On failure,
// the previous geometry is kept.
func (a *Actor) SetMesh(data []mesh.Data) error {
	if a.destroyed {
		return ErrDestroyed
	}
	if err := a.mesh.Set(data); err != nil {
		return fmt.Errorf("engine: actor %q: %w", a.name, err)
	}
	return nil
}

// SetTextures replaces the textures of a.
// The i-th texture is used by the i-th sub-mesh. A nil
// element leaves the corresponding sub-mesh untextured.
// On failure, the previous textures are kept.
func (a *Actor) SetTextures(imgs []*image.RGBA) error {
	if a.destroyed {
		return ErrDestroyed
	}
	texs := make([]driver.Texture, len(imgs))
	for i, img := range imgs {
		if img == nil {
			continue
		}
		tex, err := a.dev.NewTexture(&driver.TextureDesc{
			Width:  img.Rect.Dx(),
			Height: img.Rect.Dy(),
			Data:   packed(img),
		})
		if err != nil {
			destroyTextures(texs)
			return fmt.Errorf("engine: actor %q: texture %d: %w", a.name, i, err)
		}
		texs[i] = tex
	}
	destroyTextures(a.texs)
	a.texs = texs
	return nil
}

// packed returns the pixels of img without row padding.
func packed(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 {
		return img.Pix[:w*h*4]
	}
	b := make([]byte, 0, w*h*4)
	for y := range h {
		off := y * img.Stride
		b = append(b, img.Pix[off:off+w*4]...)
	}
	return b
}

func destroyTextures(texs []driver.Texture) {
	for _, t := range texs {
		if t != nil {
			t.Destroy()
		}
	}
}

// Update updates every component of a and uploads the
// resulting world matrix and tint.
func (a *Actor) Update(f *Frame, ctx driver.Context) {
	if a.destroyed || !a.Active() {
		return
	}
	a.Entity.Update(f.Delta)
	world := a.xform.Matrix()
	a.model.SetWorld(&world)
	ctx.UpdateBuffer(a.modelCB, a.model.Bytes())
}

// Render draws a.
// If a casts shadows, the shadow is drawn first. The
// main pixel shader and default depth/stencil state of
// f are then restored before the main draws.
func (a *Actor) Render(f *Frame, ctx driver.Context) {
	if a.destroyed || !a.Active() || a.mesh.Len() == 0 {
		return
	}
	ctx.BeginEvent(a.name)
	defer ctx.EndEvent()
	a.Entity.Render(ctx)

	if a.castShadow {
		a.renderShadow(f, ctx)
	}

	if f.PS != nil {
		ctx.SetShader(f.PS)
	}
	ctx.SetDepthStencilState(f.Depth, 0)
	ctx.SetBlendState(a.blend, [4]float32{}, 0xffffffff)
	ctx.SetRasterizerState(a.raster)
	ctx.SetSampler(shader.SamplerSlot, a.sampler)
	ctx.SetTopology(driver.TTriangle)
	for i := range a.mesh.Len() {
		a.mesh.Bind(ctx, i)
		ctx.SetConstantBuffer(driver.SVertex|driver.SPixel, shader.ModelSlot, a.modelCB)
		var tex driver.Texture
		if i < len(a.texs) {
			tex = a.texs[i]
		}
		ctx.SetShaderResource(shader.TexSlot, tex)
		a.mesh.Draw(ctx, i)
	}
}

// renderShadow draws the shadow of a.
// A light too close to the ground plane has no shadow.
func (a *Actor) renderShadow(f *Frame, ctx driver.Context) {
	proj, err := linear.ShadowProjection(f.Light)
	if err != nil {
		log.L().Debug("shadow skipped",
			log.String("actor", a.name),
			log.Any("light", f.Light),
			log.Err(err))
		return
	}
	yaw := linear.ComposeYaw(a.xform.Position(), a.xform.Rotation()[1], a.xform.Scale())
	world := proj.Mul4(yaw)
	a.shadow.SetWorld(&world)
	ctx.UpdateBuffer(a.shadowCB, a.shadow.Bytes())
	ctx.SetConstantBuffer(driver.SVertex|driver.SPixel, shader.ModelSlot, a.shadowCB)
	ctx.SetShader(a.shadowPS)
	ctx.SetBlendState(a.shadowBlend, [4]float32{}, 0xffffffff)
	ctx.SetDepthStencilState(a.shadowDepth, 0)
	ctx.SetTopology(driver.TTriangle)
	for i := range a.mesh.Len() {
		a.mesh.Bind(ctx, i)
		a.mesh.Draw(ctx, i)
	}
}

// Destroy destroys a's components and GPU objects.
// It must be called before the device is closed.
// Calling Destroy more than once has no effect.
func (a *Actor) Destroy() {
	if a.destroyed {
		return
	}
	a.release()
	a.destroyed = true
}

func (a *Actor) release() {
	a.Entity.Destroy()
	destroyTextures(a.texs)
	a.texs = nil
	for _, d := range [...]driver.Destroyer{
		a.modelCB,
		a.blend,
		a.raster,
		a.sampler,
		a.shadowPS,
		a.shadowCB,
		a.shadowBlend,
		a.shadowDepth,
	} {
		if d != nil {
			d.Destroy()
		}
	}
}
