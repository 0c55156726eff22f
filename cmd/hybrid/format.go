// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/gviegas/hybrid/config"
	"github.com/gviegas/hybrid/importer"
	"github.com/gviegas/hybrid/mesh"
)

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "WINDOW: %dx%d\n", cfg.Window.Width, cfg.Window.Height)
	fmt.Fprintf(w, "DRIVER: %s (%d frames)\n", cfg.Render.Driver, cfg.Render.Frames)
	c := &cfg.Camera
	fmt.Fprintf(w, "CAMERA: eye %v at %v up %v fov %g near %g far %g\n", c.Eye, c.At, c.Up, c.Fov, c.Near, c.Far)
	fmt.Fprintf(w, "LIGHT: %v\n", cfg.Light.Position)
	fmt.Fprintf(w, "ACTORS (%d):\n", len(cfg.Actors))
	for _, a := range cfg.Actors {
		src := a.Model
		if src == "" {
			src = fmt.Sprintf("%s(%g)", a.Shape, a.Size)
		}
		fmt.Fprintf(w, "  %s: %s\n", a.Name, src)
		fmt.Fprintf(w, "    position %v rotation %v scale %v\n", a.Position, a.Rotation, a.Scale)
		if a.Texture != "" {
			fmt.Fprintf(w, "    texture %s\n", a.Texture)
		}
		if a.CastShadow {
			fmt.Fprintf(w, "    casts shadow\n")
		}
	}
}

func printModel(w io.Writer, path string, m *importer.Model) {
	var nv, ni int
	for i := range m.Meshes {
		nv += len(m.Meshes[i].Vertices)
		ni += len(m.Meshes[i].Indices)
	}
	fmt.Fprintf(w, "MODEL %s: %d sub-meshes, %d vertices, %d triangles\n", path, len(m.Meshes), nv, ni/3)
	for i := range m.Meshes {
		d := &m.Meshes[i]
		fmt.Fprintf(w, "  [%d] %q: %d vertices, %d indices\n", i, d.Name, len(d.Vertices), len(d.Indices))
	}
	if b, ok := mesh.BoundsOf(m.Meshes); ok {
		fmt.Fprintf(w, "  bounds %v - %v (extent %g)\n", b.Min, b.Max, b.Extent())
	}
	if m.Texture != nil {
		s := m.Texture.Bounds().Size()
		fmt.Fprintf(w, "  texture %dx%d\n", s.X, s.Y)
	}
}
