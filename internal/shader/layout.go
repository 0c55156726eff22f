// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package shader defines the contract between the engine
// and the effect it renders with: entry points, binding
// slots and the layout of constant buffer data.
package shader

import (
	"unsafe"

	"github.com/gviegas/hybrid/linear"
)

// Entry points of the default effect.
const (
	// DefaultEffect is the path of the default effect.
	DefaultEffect = "HybridEngine.fx"

	// VS transforms vertices by the model, view and
	// projection matrices.
	VS = "VS"

	// PS samples the texture bound to TexSlot and
	// modulates it by the model color.
	PS = "PS"

	// PSShadow outputs the model color.
	PSShadow = "PSShadow"
)

// Binding slots.
const (
	// Constant buffer slots.
	ViewSlot  = 0
	ProjSlot  = 1
	ModelSlot = 2

	// Shader resource slot of the diffuse texture.
	TexSlot = 0

	// Sampler slot of the diffuse texture.
	SamplerSlot = 0
)

// Vertex layout.
// Each vertex is defined as follows:
//
//	[0:3] | position
//	[3:5] | texture coordinates
const (
	VertexSize = 20
	PosOffset  = 0
	UVOffset   = 12

	// Index data is made of uint32.
	IndexSize = 4
)

// ViewLayout is the layout of view data.
// It is defined as follows:
//
//	[0:16] | view matrix
type ViewLayout [16]float32

// SetView sets the view matrix.
func (l *ViewLayout) SetView(m *linear.M4) { copy(l[:], m[:]) }

// View returns the view matrix.
func (l *ViewLayout) View() (m linear.M4) {
	copy(m[:], l[:])
	return
}

// Bytes returns the memory of l.
func (l *ViewLayout) Bytes() []byte { return bytesOf(l[:]) }

// ProjLayout is the layout of projection data.
// It is defined as follows:
//
//	[0:16] | projection matrix
type ProjLayout [16]float32

// SetProj sets the projection matrix.
func (l *ProjLayout) SetProj(m *linear.M4) { copy(l[:], m[:]) }

// Proj returns the projection matrix.
func (l *ProjLayout) Proj() (m linear.M4) {
	copy(m[:], l[:])
	return
}

// Bytes returns the memory of l.
func (l *ProjLayout) Bytes() []byte { return bytesOf(l[:]) }

// ModelLayout is the layout of per-draw model data.
// It is defined as follows:
//
//	[0:16]  | world matrix
//	[16:20] | color
type ModelLayout [20]float32

// SetWorld sets the world matrix.
func (l *ModelLayout) SetWorld(m *linear.M4) { copy(l[:16], m[:]) }

// World returns the world matrix.
func (l *ModelLayout) World() (m linear.M4) {
	copy(m[:], l[:16])
	return
}

// SetColor sets the color.
func (l *ModelLayout) SetColor(c *linear.V4) { copy(l[16:20], c[:]) }

// Color returns the color.
func (l *ModelLayout) Color() (c linear.V4) {
	copy(c[:], l[16:20])
	return
}

// Bytes returns the memory of l.
func (l *ModelLayout) Bytes() []byte { return bytesOf(l[:]) }

// Sizes of the layouts in bytes.
const (
	ViewSize  = int(unsafe.Sizeof(ViewLayout{}))
	ProjSize  = int(unsafe.Sizeof(ProjLayout{}))
	ModelSize = int(unsafe.Sizeof(ModelLayout{}))
)

func bytesOf(s []float32) []byte { return linear.FloatBytes(s) }

// Decode copies the float32 data in b into dst.
// It is the inverse of the Bytes methods and is
// meant to be used by drivers.
func Decode(dst []float32, b []byte) int {
	n := min(len(dst), len(b)/4)
	copy(dst, unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(b))), n))
	return n
}
