// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package mesh

import (
	"github.com/gviegas/hybrid/linear"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max linear.V3
}

// Center returns the center of b.
func (b Bounds) Center() linear.V3 { return b.Min.Add(b.Max).Mul(0.5) }

// Size returns the extent of b along each axis.
func (b Bounds) Size() linear.V3 { return b.Max.Sub(b.Min) }

// Extent returns the largest component of b.Size().
func (b Bounds) Extent() float32 {
	s := b.Size()
	return max(s[0], s[1], s[2])
}

// BoundsOf computes the bounds of every vertex in ds.
// It returns false if there are no vertices.
func BoundsOf(ds []Data) (b Bounds, ok bool) {
	for i := range ds {
		for _, v := range ds[i].Vertices {
			if !ok {
				b = Bounds{v.Pos, v.Pos}
				ok = true
				continue
			}
			for k := range 3 {
				b.Min[k] = min(b.Min[k], v.Pos[k])
				b.Max[k] = max(b.Max[k], v.Pos[k])
			}
		}
	}
	return
}

// Center translates ds so that the center of their
// combined bounds is the origin.
func Center(ds []Data) {
	b, ok := BoundsOf(ds)
	if !ok {
		return
	}
	c := b.Center()
	for i := range ds {
		for j := range ds[i].Vertices {
			ds[i].Vertices[j].Pos = ds[i].Vertices[j].Pos.Sub(c)
		}
	}
}

// Normalize centers ds on the origin and scales them
// uniformly so that the largest extent equals target.
// It returns the scale factor applied, which is 1 when
// the geometry is flat in every axis or target is not
// positive.
func Normalize(ds []Data, target float32) float32 {
	b, ok := BoundsOf(ds)
	if !ok {
		return 1
	}
	c := b.Center()
	s := float32(1)
	if e := b.Extent(); e > 0 && target > 0 {
		s = target / e
	}
	for i := range ds {
		for j := range ds[i].Vertices {
			p := &ds[i].Vertices[j].Pos
			*p = p.Sub(c).Mul(s)
		}
	}
	return s
}
