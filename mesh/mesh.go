// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package mesh defines the geometry consumed by the engine
// along with a few utilities to measure, normalize and
// generate it.
package mesh

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gviegas/hybrid/internal/shader"
	"github.com/gviegas/hybrid/linear"
)

// Vertex is the vertex format of every mesh.
// Its memory layout matches shader.VertexSize.
type Vertex struct {
	Pos linear.V3
	UV  linear.V2
}

// Data is the geometry of a single sub-mesh.
// Indices define a triangle list.
type Data struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// ErrEmpty means that a mesh has no vertices or no
// indices.
var ErrEmpty = errors.New("mesh: empty geometry")

// ErrIndex means that an index refers to a vertex that
// does not exist or that the index count is not a
// multiple of three.
var ErrIndex = errors.New("mesh: invalid index data")

func init() {
	if unsafe.Sizeof(Vertex{}) != shader.VertexSize {
		panic("mesh: Vertex size mismatch")
	}
}

// Validate checks whether d can be drawn.
func (d *Data) Validate() error {
	switch {
	case len(d.Vertices) == 0 || len(d.Indices) == 0:
		return fmt.Errorf("%w (%q: %d vertices, %d indices)", ErrEmpty, d.Name, len(d.Vertices), len(d.Indices))
	case len(d.Indices)%3 != 0:
		return fmt.Errorf("%w: %d indices is not a triangle list", ErrIndex, len(d.Indices))
	}
	n := uint32(len(d.Vertices))
	for i, x := range d.Indices {
		if x >= n {
			return fmt.Errorf("%w: index %d is %d (%d vertices)", ErrIndex, i, x, n)
		}
	}
	return nil
}

// VertexBytes returns the memory of d.Vertices.
func (d *Data) VertexBytes() []byte {
	if len(d.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d.Vertices[0])), len(d.Vertices)*shader.VertexSize)
}

// IndexBytes returns the memory of d.Indices.
func (d *Data) IndexBytes() []byte {
	if len(d.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d.Indices[0])), len(d.Indices)*shader.IndexSize)
}

// Merge concatenates ds into a single mesh.
// Indices are offset so that they keep referring to the
// same vertices.
func Merge(name string, ds []Data) Data {
	var nv, ni int
	for i := range ds {
		nv += len(ds[i].Vertices)
		ni += len(ds[i].Indices)
	}
	m := Data{
		Name:     name,
		Vertices: make([]Vertex, 0, nv),
		Indices:  make([]uint32, 0, ni),
	}
	for i := range ds {
		off := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, ds[i].Vertices...)
		for _, x := range ds[i].Indices {
			m.Indices = append(m.Indices, x+off)
		}
	}
	return m
}
