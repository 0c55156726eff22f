// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package importer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gviegas/hybrid/gltf"
	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/linear"
	"github.com/gviegas/hybrid/mesh"
)

// GLTF decodes glTF 2.0 files, either as JSON (.gltf)
// or binary (.glb).
// Meshes are placed by the node hierarchy of the default
// scene. Only triangle list primitives are imported.
type GLTF struct{}

// Decode implements Decoder.
func (GLTF) Decode(r io.Reader, dir string) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f *gltf.GLTF
	var bin []byte
	if gltf.IsGLB(bytes.NewReader(data)) {
		f, bin, err = gltf.DecodeGLB(bytes.NewReader(data))
	} else {
		f, err = gltf.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if len(f.ExtensionsRequired) > 0 {
		return nil, fmt.Errorf("%w: glTF extensions %v", ErrUnsupported, f.ExtensionsRequired)
	}
	if err := f.Check(); err != nil {
		return nil, err
	}
	bufs, err := f.LoadBuffers(dir, bin)
	if err != nil {
		return nil, err
	}
	d := gltfDecoder{f: f, bufs: bufs, dir: dir}
	if err := d.decode(); err != nil {
		return nil, err
	}
	if len(d.model.Meshes) == 0 {
		return nil, fmt.Errorf("gltf: %w", mesh.ErrEmpty)
	}
	return &d.model, nil
}

type gltfDecoder struct {
	f     *gltf.GLTF
	bufs  [][]byte
	dir   string
	model Model
	// Material of the first primitive that has a base
	// color texture.
	material *int64
}

// roots returns the root nodes to traverse.
func (d *gltfDecoder) roots() []int64 {
	f := d.f
	switch {
	case f.Scene != nil:
		return f.Scenes[*f.Scene].Nodes
	case len(f.Scenes) > 0:
		return f.Scenes[0].Nodes
	}
	child := make([]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var r []int64
	for i := range f.Nodes {
		if !child[i] {
			r = append(r, int64(i))
		}
	}
	return r
}

func local(n *gltf.Node) linear.M4 {
	if n.Matrix != nil {
		return linear.M4(*n.Matrix)
	}
	m := linear.I()
	if t := n.Translation; t != nil {
		m = linear.Translation(linear.V3(*t))
	}
	if r := n.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if s := n.Scale; s != nil {
		m = m.Mul4(linear.Scaling(linear.V3(*s)))
	}
	return m
}

func (d *gltfDecoder) decode() error {
	if len(d.f.Nodes) == 0 {
		// No hierarchy; take meshes as they are.
		for i := range d.f.Meshes {
			if err := d.mesh(int64(i), linear.I()); err != nil {
				return err
			}
		}
	} else {
		for _, n := range d.roots() {
			if err := d.node(n, linear.I(), 0); err != nil {
				return err
			}
		}
	}
	d.texture()
	return nil
}

func (d *gltfDecoder) node(i int64, parent linear.M4, depth int) error {
	if depth > len(d.f.Nodes) {
		return fmt.Errorf("gltf: node hierarchy has a cycle")
	}
	n := &d.f.Nodes[i]
	world := parent.Mul4(local(n))
	if n.Mesh != nil {
		if err := d.mesh(*n.Mesh, world); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := d.node(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *gltfDecoder) mesh(i int64, world linear.M4) error {
	gm := &d.f.Meshes[i]
	flip := world.Det() < 0
	for j, p := range gm.Primitives {
		if p.Mode != nil && *p.Mode != gltf.TRIANGLES {
			log.L().Debug("gltf: primitive skipped",
				log.String("mesh", gm.Name), log.Int("mode", int(*p.Mode)))
			continue
		}
		pa, ok := p.Attributes[gltf.POSITION]
		if !ok {
			return fmt.Errorf("gltf: mesh %d primitive %d has no POSITION", i, j)
		}
		pos, n, err := d.f.Floats(d.bufs, pa)
		if err != nil {
			return err
		}
		if n != 3 {
			return fmt.Errorf("gltf: POSITION is not VEC3")
		}
		md := mesh.Data{
			Name:     gm.Name,
			Vertices: make([]mesh.Vertex, len(pos)/3),
		}
		if md.Name == "" {
			md.Name = fmt.Sprintf("mesh%d", i)
		}
		for k := range md.Vertices {
			p := linear.V3{pos[k*3], pos[k*3+1], pos[k*3+2]}
			md.Vertices[k].Pos = linear.TransformPoint(&world, p)
		}
		if ta, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
			uv, n, err := d.f.Floats(d.bufs, ta)
			if err != nil {
				return err
			}
			if n != 2 || len(uv)/2 != len(md.Vertices) {
				return fmt.Errorf("gltf: TEXCOORD_0 does not match POSITION")
			}
			for k := range md.Vertices {
				md.Vertices[k].UV = linear.V2{uv[k*2], uv[k*2+1]}
			}
		}
		if p.Indices != nil {
			if md.Indices, err = d.f.Indices(d.bufs, *p.Indices); err != nil {
				return err
			}
		} else {
			md.Indices = make([]uint32, len(md.Vertices))
			for k := range md.Indices {
				md.Indices[k] = uint32(k)
			}
		}
		if flip {
			for k := 0; k+2 < len(md.Indices); k += 3 {
				md.Indices[k+1], md.Indices[k+2] = md.Indices[k+2], md.Indices[k+1]
			}
		}
		if d.material == nil && p.Material != nil {
			if pbr := d.f.Materials[*p.Material].PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
				d.material = p.Material
			}
		}
		d.model.Meshes = append(d.model.Meshes, md)
	}
	return nil
}

// texture decodes the base color texture of the
// selected material.
// Failures are logged and leave the model untextured.
func (d *gltfDecoder) texture() {
	if d.material == nil {
		return
	}
	ti := d.f.Materials[*d.material].PBRMetallicRoughness.BaseColorTexture.Index
	if ti < 0 || ti >= int64(len(d.f.Textures)) || d.f.Textures[ti].Source == nil {
		return
	}
	data, err := d.f.ImageData(d.bufs, d.dir, *d.f.Textures[ti].Source)
	if err == nil {
		d.model.Texture, err = DecodeImage(data)
	}
	if err != nil {
		log.L().Debug("gltf: texture not loaded", log.Err(err))
	}
}
