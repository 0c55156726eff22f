// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package ecs

import (
	"fmt"
	"time"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/internal/shader"
	"github.com/gviegas/hybrid/mesh"
)

// SubMesh is the GPU copy of a mesh.Data.
type SubMesh struct {
	Name     string
	VB       driver.Buffer
	IB       driver.Buffer
	VtxCount int
	IdxCount int
}

// Mesh is a Component that owns the vertex and index
// buffers of every sub-mesh of an Entity.
// Drawing is driven by the owner, which binds per-draw
// state between Bind and Draw.
type Mesh struct {
	dev  driver.Device
	subs []SubMesh
}

// NewMesh creates an empty Mesh whose buffers will be
// created from dev.
func NewMesh(dev driver.Device) *Mesh { return &Mesh{dev: dev} }

// Kind implements Component.
func (m *Mesh) Kind() Kind { return KindMesh }

// Init implements Component.
func (m *Mesh) Init() error {
	if m.dev == nil {
		return fmt.Errorf("ecs: mesh has no device")
	}
	return nil
}

// Update implements Component.
func (m *Mesh) Update(time.Duration) {}

// Render implements Component.
func (m *Mesh) Render(driver.Context) {}

// Destroy implements Component.
func (m *Mesh) Destroy() {
	destroySubs(m.subs)
	m.subs = nil
}

func destroySubs(subs []SubMesh) {
	for i := range subs {
		if subs[i].VB != nil {
			subs[i].VB.Destroy()
		}
		if subs[i].IB != nil {
			subs[i].IB.Destroy()
		}
	}
}

// Set replaces the sub-meshes of m with data.
// Every element of data must be valid. If Set fails,
// m is left unchanged.
func (m *Mesh) Set(data []mesh.Data) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: no sub-meshes", mesh.ErrEmpty)
	}
	for i := range data {
		if err := data[i].Validate(); err != nil {
			return err
		}
	}
	subs := make([]SubMesh, 0, len(data))
	for i := range data {
		d := &data[i]
		vb, err := m.dev.NewBuffer(&driver.BufferDesc{
			Usage:  driver.UVertex,
			Size:   len(d.Vertices) * shader.VertexSize,
			Stride: shader.VertexSize,
			Data:   d.VertexBytes(),
		})
		if err != nil {
			destroySubs(subs)
			return fmt.Errorf("ecs: vertex buffer of %q: %w", d.Name, err)
		}
		ib, err := m.dev.NewBuffer(&driver.BufferDesc{
			Usage:  driver.UIndex,
			Size:   len(d.Indices) * shader.IndexSize,
			Stride: shader.IndexSize,
			Data:   d.IndexBytes(),
		})
		if err != nil {
			vb.Destroy()
			destroySubs(subs)
			return fmt.Errorf("ecs: index buffer of %q: %w", d.Name, err)
		}
		subs = append(subs, SubMesh{
			Name:     d.Name,
			VB:       vb,
			IB:       ib,
			VtxCount: len(d.Vertices),
			IdxCount: len(d.Indices),
		})
	}
	destroySubs(m.subs)
	m.subs = subs
	return nil
}

// Len returns the number of sub-meshes.
func (m *Mesh) Len() int { return len(m.subs) }

// Sub returns the i-th sub-mesh.
func (m *Mesh) Sub(i int) *SubMesh { return &m.subs[i] }

// Bind binds the vertex and index buffers of the i-th
// sub-mesh.
func (m *Mesh) Bind(ctx driver.Context, i int) {
	ctx.SetVertexBuffer(m.subs[i].VB, 0)
	ctx.SetIndexBuffer(m.subs[i].IB, 0)
}

// Draw draws the i-th sub-mesh using whatever buffers
// are bound.
func (m *Mesh) Draw(ctx driver.Context, i int) {
	ctx.DrawIndexed(m.subs[i].IdxCount, 0, 0)
}
