// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package mesh

import (
	"github.com/gviegas/hybrid/linear"
)

// Quad creates a square in the XY plane facing +Z.
func Quad(size float32) Data {
	h := size / 2
	return Data{
		Name: "Quad",
		Vertices: []Vertex{
			{linear.V3{-h, -h, 0}, linear.V2{0, 1}},
			{linear.V3{h, -h, 0}, linear.V2{1, 1}},
			{linear.V3{h, h, 0}, linear.V2{1, 0}},
			{linear.V3{-h, h, 0}, linear.V2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Plane creates a square in the XZ plane facing +Y.
// Texture coordinates repeat tile times along each axis.
func Plane(size, tile float32) Data {
	h := size / 2
	return Data{
		Name: "Plane",
		Vertices: []Vertex{
			{linear.V3{-h, 0, -h}, linear.V2{0, 0}},
			{linear.V3{h, 0, -h}, linear.V2{tile, 0}},
			{linear.V3{h, 0, h}, linear.V2{tile, tile}},
			{linear.V3{-h, 0, h}, linear.V2{0, tile}},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

// Cube creates an axis-aligned cube centered on the
// origin, with outward-facing triangles.
func Cube(size float32) Data {
	h := size / 2
	faces := [6]struct{ n, u, v linear.V3 }{
		{linear.V3{1, 0, 0}, linear.V3{0, 0, -1}, linear.V3{0, 1, 0}},
		{linear.V3{-1, 0, 0}, linear.V3{0, 0, 1}, linear.V3{0, 1, 0}},
		{linear.V3{0, 1, 0}, linear.V3{1, 0, 0}, linear.V3{0, 0, -1}},
		{linear.V3{0, -1, 0}, linear.V3{1, 0, 0}, linear.V3{0, 0, 1}},
		{linear.V3{0, 0, 1}, linear.V3{1, 0, 0}, linear.V3{0, 1, 0}},
		{linear.V3{0, 0, -1}, linear.V3{-1, 0, 0}, linear.V3{0, 1, 0}},
	}
	d := Data{
		Name:     "Cube",
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		off := uint32(len(d.Vertices))
		c := f.n.Mul(h)
		u, v := f.u.Mul(h), f.v.Mul(h)
		d.Vertices = append(d.Vertices,
			Vertex{c.Sub(u).Sub(v), linear.V2{0, 1}},
			Vertex{c.Add(u).Sub(v), linear.V2{1, 1}},
			Vertex{c.Add(u).Add(v), linear.V2{1, 0}},
			Vertex{c.Sub(u).Add(v), linear.V2{0, 0}},
		)
		d.Indices = append(d.Indices, off, off+1, off+2, off, off+2, off+3)
	}
	return d
}
