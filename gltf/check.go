// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"errors"
)

func newErr(reason string) error {
	return errors.New("gltf: " + reason)
}

// Check checks that f is valid glTF.
// Only the properties this package interprets are
// checked.
func (f *GLTF) Check() error {
	if s := f.Scene; s != nil && (*s < 0 || *s >= int64(len(f.Scenes))) {
		return newErr("invalid GLTF.Scene index")
	}
	for _, s := range f.Scenes {
		for _, n := range s.Nodes {
			if n < 0 || n >= int64(len(f.Nodes)) {
				return newErr("invalid Scene.Nodes index")
			}
		}
	}
	for _, b := range f.BufferViews {
		if err := b.Check(f); err != nil {
			return err
		}
	}
	for _, a := range f.Accessors {
		if err := a.Check(f); err != nil {
			return err
		}
	}
	for _, m := range f.Meshes {
		if err := m.Check(f); err != nil {
			return err
		}
	}
	for _, n := range f.Nodes {
		if m := n.Mesh; m != nil && (*m < 0 || *m >= int64(len(f.Meshes))) {
			return newErr("invalid Node.Mesh index")
		}
		for _, c := range n.Children {
			if c < 0 || c >= int64(len(f.Nodes)) {
				return newErr("invalid Node.Children index")
			}
		}
	}
	return nil
}

// Check checks that b is valid glTF.bufferViews' element.
func (b *BufferView) Check(gltf *GLTF) error {
	if b.Buffer < 0 || b.Buffer >= int64(len(gltf.Buffers)) {
		return newErr("invalid BufferView.Buffer index")
	}
	if b.ByteOffset < 0 || b.ByteLength < 1 ||
		b.ByteOffset+b.ByteLength > gltf.Buffers[b.Buffer].ByteLength {
		return newErr("invalid BufferView range")
	}
	if b.ByteStride != 0 && (b.ByteStride < 4 || b.ByteStride > 252 || b.ByteStride%4 != 0) {
		return newErr("invalid BufferView.ByteStride value")
	}
	return nil
}

// Check checks that a is valid glTF.accessors' element.
func (a *Accessor) Check(gltf *GLTF) error {
	if a.BufferView != nil {
		idx := *a.BufferView
		if idx < 0 || idx >= int64(len(gltf.BufferViews)) {
			return newErr("invalid Accessor.BufferView index")
		}
	}
	if a.ByteOffset < 0 {
		return newErr("invalid Accessor.BufferOffset value")
	}
	if componentSize(a.ComponentType) == 0 {
		return newErr("invalid Accessor.ComponentType value")
	}
	if a.Count < 1 {
		return newErr("invalid Accessor.Count value")
	}
	if typeCount(a.Type) == 0 {
		return newErr("invalid Accessor.Type value")
	}
	return nil
}

// Check checks that m is valid glTF.meshes' element.
func (m *Mesh) Check(gltf *GLTF) error {
	if len(m.Primitives) == 0 {
		return newErr("invalid Mesh.Primitives length")
	}
	n := int64(len(gltf.Accessors))
	for _, p := range m.Primitives {
		for _, a := range p.Attributes {
			if a < 0 || a >= n {
				return newErr("invalid Primitive.Attributes index")
			}
		}
		if p.Indices != nil && (*p.Indices < 0 || *p.Indices >= n) {
			return newErr("invalid Primitive.Indices index")
		}
		if p.Material != nil && (*p.Material < 0 || *p.Material >= int64(len(gltf.Materials))) {
			return newErr("invalid Primitive.Material index")
		}
		if p.Mode != nil && (*p.Mode < POINTS || *p.Mode > TRIANGLE_FAN) {
			return newErr("invalid Primitive.Mode value")
		}
	}
	return nil
}
