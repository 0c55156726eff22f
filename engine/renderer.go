// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/internal/shader"
)

func newRendErr(reason string) error { return errors.New("engine: renderer: " + reason) }

var errNoRendDevice = newRendErr("nil device")

// UI is the interface of the step that runs at the start
// of every frame, before actors are updated.
// It may mutate the Scene.
type UI interface {
	Update(f *Frame, s *Scene)
}

// UIFunc is a function that implements UI.
type UIFunc func(f *Frame, s *Scene)

// Update implements UI.
func (fn UIFunc) Update(f *Frame, s *Scene) { fn(f, s) }

// Renderer renders Scenes.
// It owns the swapchain and the pipeline objects shared
// by every Actor.
// It must only be used from the goroutine that owns the
// device.
type Renderer struct {
	cfg Config
	dev driver.Device
	ctx driver.Context
	sc  driver.Swapchain

	vs, ps driver.Shader
	depth  driver.DepthStencilState

	view   shader.ViewLayout
	proj   shader.ProjLayout
	viewCB driver.Buffer
	projCB driver.Buffer

	clock clock
	frame Frame
}

// NewRenderer creates a new Renderer.
// If any creation fails, the objects created so far are
// destroyed.
func NewRenderer(dev driver.Device, cfg Config) (_ *Renderer, err error) {
	if dev == nil {
		return nil, errNoRendDevice
	}
	cfg.setDefaults()
	r := &Renderer{cfg: cfg, dev: dev, ctx: dev.Context()}
	defer func() {
		if err != nil {
			r.release()
		}
	}()

	if r.sc, err = dev.NewSwapchain(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("engine: renderer: swapchain: %w", err)
	}
	vs := driver.ShaderDesc{Stage: driver.SVertex, Path: cfg.Effect, Entry: shader.VS}
	if r.vs, err = dev.NewShader(&vs); err != nil {
		return nil, fmt.Errorf("engine: renderer: vertex shader: %w", err)
	}
	ps := driver.ShaderDesc{Stage: driver.SPixel, Path: cfg.Effect, Entry: shader.PS}
	if r.ps, err = dev.NewShader(&ps); err != nil {
		return nil, fmt.Errorf("engine: renderer: pixel shader: %w", err)
	}
	if r.viewCB, err = dev.NewBuffer(&driver.BufferDesc{Usage: driver.UConstant, Size: shader.ViewSize}); err != nil {
		return nil, fmt.Errorf("engine: renderer: view buffer: %w", err)
	}
	if r.projCB, err = dev.NewBuffer(&driver.BufferDesc{Usage: driver.UConstant, Size: shader.ProjSize}); err != nil {
		return nil, fmt.Errorf("engine: renderer: projection buffer: %w", err)
	}
	dd := driver.DefaultDepth()
	if r.depth, err = dev.NewDepthStencilState(&dd); err != nil {
		return nil, fmt.Errorf("engine: renderer: depth state: %w", err)
	}

	r.frame.PS = r.ps
	r.frame.Depth = r.depth
	log.L().Debug("renderer created",
		log.Int("width", cfg.Width),
		log.Int("height", cfg.Height),
		log.String("effect", cfg.Effect))
	return r, nil
}

// Swapchain returns the swapchain that r renders to.
func (r *Renderer) Swapchain() driver.Swapchain { return r.sc }

// Context returns the context that r submits commands to.
func (r *Renderer) Context() driver.Context { return r.ctx }

// Frame returns the data of the current frame.
func (r *Renderer) Frame() *Frame { return &r.frame }

// Resize resizes the swapchain.
func (r *Renderer) Resize(width, height int) error {
	if err := r.sc.Resize(width, height); err != nil {
		return fmt.Errorf("engine: renderer: resize: %w", err)
	}
	r.cfg.Width, r.cfg.Height = width, height
	return nil
}

func (r *Renderer) aspect() float32 {
	w, h := r.sc.Width(), r.sc.Height()
	if h == 0 {
		return 1
	}
	return float32(w) / float32(h)
}

// Update starts a new frame.
// It runs ui (if not nil), uploads the camera matrices
// and updates every Actor of s in order.
func (r *Renderer) Update(s *Scene, ui UI) {
	r.clock.tick(&r.frame)
	r.frame.Light = s.Light()
	if ui != nil {
		ui.Update(&r.frame, s)
		// UI may have moved the light or camera.
		r.frame.Light = s.Light()
	}
	cam := s.Camera()
	r.frame.View = cam.View()
	r.frame.Proj = cam.Proj(r.aspect())
	r.view.SetView(&r.frame.View)
	r.proj.SetProj(&r.frame.Proj)
	r.ctx.UpdateBuffer(r.viewCB, r.view.Bytes())
	r.ctx.UpdateBuffer(r.projCB, r.proj.Bytes())

	for _, a := range s.All() {
		a.Update(&r.frame, r.ctx)
	}
}

// Render clears the render target, binds the shared
// pipeline objects and renders every Actor of s in
// order.
func (r *Renderer) Render(s *Scene) {
	r.ctx.BeginEvent("frame")
	defer r.ctx.EndEvent()

	r.ctx.SetRenderTarget(r.sc)
	r.ctx.ClearRenderTarget(r.cfg.ClearColor)
	r.ctx.ClearDepth(1)
	r.ctx.SetViewport(driver.Viewport{
		Width:  float32(r.sc.Width()),
		Height: float32(r.sc.Height()),
		Zfar:   1,
	})
	r.ctx.SetShader(r.vs)
	r.ctx.SetShader(r.ps)
	r.ctx.SetConstantBuffer(driver.SVertex|driver.SPixel, shader.ViewSlot, r.viewCB)
	r.ctx.SetConstantBuffer(driver.SVertex|driver.SPixel, shader.ProjSlot, r.projCB)
	r.ctx.SetDepthStencilState(r.depth, 0)

	for _, a := range s.All() {
		a.Render(&r.frame, r.ctx)
	}
}

// Present presents the back buffer.
func (r *Renderer) Present() error {
	if err := r.sc.Present(); err != nil {
		return fmt.Errorf("engine: renderer: present: %w", err)
	}
	return nil
}

// Draw runs a complete frame: Update, Render and
// Present.
func (r *Renderer) Draw(s *Scene, ui UI) error {
	r.Update(s, ui)
	r.Render(s)
	return r.Present()
}

// Destroy destroys r.
// Scenes rendered by r are not destroyed.
func (r *Renderer) Destroy() {
	if r.dev == nil {
		return
	}
	r.release()
	r.dev = nil
}

func (r *Renderer) release() {
	for _, d := range [...]driver.Destroyer{
		r.depth,
		r.projCB,
		r.viewCB,
		r.ps,
		r.vs,
		r.sc,
	} {
		if d != nil {
			d.Destroy()
		}
	}
}
