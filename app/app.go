// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package app ties a configuration to a renderer and a
// scene.
// It builds actors from shapes and model files, imports
// new models on request and saves the scene back to a
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gviegas/hybrid/config"
	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/engine"
	"github.com/gviegas/hybrid/importer"
	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/linear"
	"github.com/gviegas/hybrid/mesh"
)

// ErrNoImage means that the swapchain cannot be read
// back.
var ErrNoImage = errors.New("app: swapchain has no readable image")

// App is a running session.
// Its methods must be called from the goroutine that owns
// the device.
type App struct {
	cfg   *config.Config
	dev   driver.Device
	rend  *engine.Renderer
	scene *engine.Scene
	cache *importer.Cache

	// Where each actor came from, so it can be saved.
	src map[engine.ActorID]config.Actor

	// Digest of the file last applied or saved.
	sum uint64
}

// New creates an App that renders cfg's scene on dev.
// Model files are decoded concurrently before any actor
// is created.
func New(ctx context.Context, dev driver.Device, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rend, err := engine.NewRenderer(dev, engine.Config{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		ClearColor: cfg.Render.ClearColor,
	})
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:   cfg,
		dev:   dev,
		rend:  rend,
		scene: engine.NewScene(),
		cache: importer.NewCache(),
		src:   make(map[engine.ActorID]config.Actor),
	}
	if err := a.Apply(ctx, cfg); err != nil {
		rend.Destroy()
		return nil, err
	}
	return a, nil
}

// Config returns the configuration a was created or last
// updated with.
func (a *App) Config() *config.Config { return a.cfg }

// Renderer returns the renderer of a.
func (a *App) Renderer() *engine.Renderer { return a.rend }

// Scene returns the scene of a.
func (a *App) Scene() *engine.Scene { return a.scene }

// Cache returns the model cache of a.
func (a *App) Cache() *importer.Cache { return a.cache }

// Apply replaces the scene's actors, light and camera
// with the ones described by cfg.
// If any actor cannot be built, the scene is left
// unchanged.
func (a *App) Apply(ctx context.Context, cfg *config.Config) error {
	var paths []string
	for i := range cfg.Actors {
		if m := cfg.Actors[i].Model; m != "" {
			paths = append(paths, cfg.Resolve(m))
		}
	}
	models, err := importer.LoadAll(ctx, a.cache, paths)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	actors := make([]*engine.Actor, 0, len(cfg.Actors))
	destroy := func() {
		for _, x := range actors {
			x.Destroy()
		}
	}
	for i := range cfg.Actors {
		desc := &cfg.Actors[i]
		var m *importer.Model
		if desc.Model != "" {
			m, models = models[0], models[1:]
		}
		x, err := a.build(cfg, desc, m)
		if err != nil {
			destroy()
			return err
		}
		actors = append(actors, x)
	}

	a.scene.Clear()
	clear(a.src)
	for i, x := range actors {
		a.src[a.scene.Add(x)] = cfg.Actors[i]
	}
	a.scene.SetLight(linear.V3(cfg.Light.Position))
	cam := a.scene.Camera()
	*cam = engine.Camera{
		Eye:  linear.V3(cfg.Camera.Eye),
		At:   linear.V3(cfg.Camera.At),
		Up:   linear.V3(cfg.Camera.Up),
		FovY: cfg.Camera.Fov,
		Near: cfg.Camera.Near,
		Far:  cfg.Camera.Far,
	}
	if w, h := cfg.Window.Width, cfg.Window.Height; w != a.rend.Swapchain().Width() || h != a.rend.Swapchain().Height() {
		if err := a.rend.Resize(w, h); err != nil {
			log.L().Error("resize failed", log.Err(err))
		}
	}
	a.cfg = cfg
	a.sum = cfg.Sum()
	log.L().Info("scene built", log.Int("actors", a.scene.Len()))
	return nil
}

// shape creates the geometry of a shape actor.
func shape(desc *config.Actor) []mesh.Data {
	switch desc.Shape {
	case config.ShapePlane:
		return []mesh.Data{mesh.Plane(desc.Size, desc.Tile)}
	case config.ShapeCube:
		return []mesh.Data{mesh.Cube(desc.Size)}
	case config.ShapeQuad:
		return []mesh.Data{mesh.Quad(desc.Size)}
	}
	return nil
}

// build creates an Actor as described by desc.
// m is the decoded model, if desc names one.
func (a *App) build(cfg *config.Config, desc *config.Actor, m *importer.Model) (*engine.Actor, error) {
	var (
		data []mesh.Data
		img  image.Image
	)
	if m != nil {
		data, img = m.Meshes, m.Texture
		if desc.Normalize {
			mesh.Normalize(data, cfg.Import.TargetSize)
		}
	} else {
		data = shape(desc)
	}
	if desc.Texture != "" {
		var err error
		if img, err = importer.LoadImage(cfg.Resolve(desc.Texture)); err != nil {
			return nil, fmt.Errorf("app: actor %q: %w", desc.Name, err)
		}
	}

	x, err := engine.NewActor(a.dev, desc.Name)
	if err != nil {
		return nil, err
	}
	if err := x.SetMesh(data); err != nil {
		x.Destroy()
		return nil, err
	}
	if img != nil {
		if err := x.SetTextures([]*image.RGBA{importer.RGBA(img)}); err != nil {
			x.Destroy()
			return nil, err
		}
	}
	if desc.GUID != "" {
		id, err := uuid.Parse(desc.GUID)
		if err != nil {
			x.Destroy()
			return nil, fmt.Errorf("app: actor %q: %w", desc.Name, err)
		}
		x.SetGUID(id)
	}
	x.Transform().SetTransform(
		linear.V3(desc.Position),
		linear.Rad(linear.V3(desc.Rotation)),
		linear.V3(desc.Scale))
	x.SetCastShadow(desc.CastShadow)
	return x, nil
}

// ImportModel imports the model file at modelPath as a
// new actor.
// The geometry is centered and scaled to the import
// target size. If texturePath is empty, the model's own
// texture is used, if any.
// The new actor casts shadows and is added last.
// Paths are stored as absolute paths.
func (a *App) ImportModel(modelPath, texturePath string) (engine.ActorID, error) {
	start := time.Now()
	var err error
	if modelPath, err = filepath.Abs(modelPath); err != nil {
		return engine.ActorID{}, fmt.Errorf("app: import: %w", err)
	}
	if texturePath != "" {
		if texturePath, err = filepath.Abs(texturePath); err != nil {
			return engine.ActorID{}, fmt.Errorf("app: import: %w", err)
		}
	}
	m, err := a.cache.Load(modelPath)
	if err != nil {
		log.L().Error("import failed", log.String("path", modelPath), log.Err(err))
		return engine.ActorID{}, fmt.Errorf("app: import: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))
	desc := config.Actor{
		Name:       name,
		Model:      modelPath,
		Texture:    texturePath,
		Scale:      config.Vec3{1, 1, 1},
		CastShadow: true,
		Normalize:  true,
	}
	x, err := a.build(a.cfg, &desc, m)
	if err != nil {
		log.L().Error("import failed", log.String("path", modelPath), log.Err(err))
		return engine.ActorID{}, err
	}
	desc.GUID = x.GUID().String()
	id := a.scene.Add(x)
	a.src[id] = desc
	log.L().Info("model imported",
		log.String("name", name),
		log.String("guid", desc.GUID),
		log.Since("took", start))
	return id, nil
}

// Remove destroys the actor identified by id.
func (a *App) Remove(id engine.ActorID) error {
	if err := a.scene.Destroy(id); err != nil {
		return err
	}
	delete(a.src, id)
	return nil
}

// Snapshot returns a's configuration with the actors
// replaced by the current state of the scene.
func (a *App) Snapshot() *config.Config {
	cfg := *a.cfg
	cfg.Light.Position = config.Vec3(a.scene.Light())
	cam := a.scene.Camera()
	cfg.Camera = config.Camera{
		Eye:  config.Vec3(cam.Eye),
		At:   config.Vec3(cam.At),
		Up:   config.Vec3(cam.Up),
		Fov:  cam.FovY,
		Near: cam.Near,
		Far:  cam.Far,
	}
	cfg.Actors = make([]config.Actor, 0, a.scene.Len())
	for id, x := range a.scene.All() {
		desc := a.src[id]
		t := x.Transform()
		desc.Name = x.Name()
		desc.GUID = x.GUID().String()
		desc.Position = config.Vec3(t.Position())
		desc.Rotation = config.Vec3(linear.Deg(t.Rotation()))
		desc.Scale = config.Vec3(t.Scale())
		desc.CastShadow = x.CastShadow()
		cfg.Actors = append(cfg.Actors, desc)
	}
	return &cfg
}

// Save writes a snapshot of a to path.
// Model and texture paths are made relative to the
// directory of path when possible.
func (a *App) Save(path string) error {
	cfg := a.Snapshot()
	dir := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" {
			return p
		}
		abs := a.cfg.Resolve(p)
		if r, err := filepath.Rel(dir, abs); err == nil {
			return filepath.ToSlash(r)
		}
		return p
	}
	for i := range cfg.Actors {
		x := &cfg.Actors[i]
		x.Model = rel(x.Model)
		x.Texture = rel(x.Texture)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	a.sum = cfg.Sum()
	log.L().Info("scene saved", log.String("path", path), log.Int("actors", len(cfg.Actors)))
	return nil
}

// Frame runs a complete frame.
func (a *App) Frame(ui engine.UI) error { return a.rend.Draw(a.scene, ui) }

// Run renders n frames.
func (a *App) Run(ctx context.Context, n int, ui engine.UI) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Frame(ui); err != nil {
			return fmt.Errorf("app: frame %d: %w", i, err)
		}
	}
	return nil
}

// Loop renders frames until ctx is done or ui asks to
// stop by returning false from done.
// Reloads received from reloads are applied between
// frames, unless they carry the contents that a was last
// applied or saved with.
func (a *App) Loop(ctx context.Context, ui engine.UI, done func() bool, reloads <-chan config.Reload) error {
	tick := time.NewTicker(time.Second / 60)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if r.Err != nil {
				log.L().Warn("reload ignored", log.Err(r.Err))
				continue
			}
			if s := r.Config.Sum(); s != 0 && s == a.sum {
				log.L().Debug("reload skipped, contents unchanged")
				continue
			}
			if err := a.Apply(ctx, r.Config); err != nil {
				log.L().Error("reload failed", log.Err(err))
			}
		case <-tick.C:
			if err := a.Frame(ui); err != nil {
				return err
			}
			if done != nil && done() {
				return nil
			}
		}
	}
}

// pngWriter is implemented by swapchains whose back
// buffer can be encoded as PNG.
type pngWriter interface {
	WritePNG(w io.Writer) error
}

// WritePNG writes the last rendered frame to w.
func (a *App) WritePNG(w io.Writer) error {
	pw, ok := a.rend.Swapchain().(pngWriter)
	if !ok {
		return ErrNoImage
	}
	return pw.WritePNG(w)
}

// SavePNG writes the last rendered frame to the file at
// path.
func (a *App) SavePNG(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return a.WritePNG(f)
}

// Destroy destroys every actor and the renderer.
func (a *App) Destroy() {
	a.scene.Clear()
	clear(a.src)
	a.rend.Destroy()
}
