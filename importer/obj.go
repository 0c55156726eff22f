// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/linear"
	"github.com/gviegas/hybrid/mesh"
)

// OBJ decodes Wavefront OBJ files.
// Only positions, texture coordinates and polygonal faces
// are interpreted. Each object ('o') or group ('g') starts
// a new sub-mesh. Polygons are triangulated as fans and
// the V texture coordinate is flipped so that the origin
// is the top-left corner.
type OBJ struct{}

type objKey struct{ v, vt int }

type objParser struct {
	mtl  []string
	pos  []linear.V3
	uv   []linear.V2
	out  []mesh.Data
	cur  *mesh.Data
	seen map[objKey]uint32
	line int
}

func (p *objParser) errorf(format string, args ...any) error {
	return fmt.Errorf("obj: line %d: "+format, append([]any{p.line}, args...)...)
}

func (p *objParser) start(name string) {
	if p.cur != nil && len(p.cur.Indices) == 0 {
		p.cur.Name = name
		return
	}
	p.out = append(p.out, mesh.Data{Name: name})
	p.cur = &p.out[len(p.out)-1]
	p.seen = make(map[objKey]uint32)
}

func (p *objParser) floats(fields []string, n int) ([3]float32, error) {
	var v [3]float32
	if len(fields) < n {
		return v, p.errorf("expected %d values, have %d", n, len(fields))
	}
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, p.errorf("%w", err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// index resolves a 1-based (or negative, relative) OBJ
// index into a 0-based one.
func (p *objParser) index(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	switch {
	case err != nil:
		return 0, p.errorf("bad index %q", s)
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, p.errorf("index %d out of range [1, %d]", i, n)
}

func (p *objParser) vertex(s string) (uint32, error) {
	parts := strings.Split(s, "/")
	v, err := p.index(parts[0], len(p.pos))
	if err != nil {
		return 0, err
	}
	k := objKey{v, -1}
	if len(parts) > 1 && parts[1] != "" {
		if k.vt, err = p.index(parts[1], len(p.uv)); err != nil {
			return 0, err
		}
	}
	if i, ok := p.seen[k]; ok {
		return i, nil
	}
	vtx := mesh.Vertex{Pos: p.pos[k.v]}
	if k.vt >= 0 {
		uv := p.uv[k.vt]
		vtx.UV = linear.V2{uv[0], 1 - uv[1]}
	}
	i := uint32(len(p.cur.Vertices))
	p.cur.Vertices = append(p.cur.Vertices, vtx)
	p.seen[k] = i
	return i, nil
}

func (p *objParser) face(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("face with %d vertices", len(fields))
	}
	if p.cur == nil {
		p.start("default")
	}
	idx := make([]uint32, len(fields))
	for i, f := range fields {
		var err error
		if idx[i], err = p.vertex(f); err != nil {
			return err
		}
	}
	for i := 2; i < len(idx); i++ {
		p.cur.Indices = append(p.cur.Indices, idx[0], idx[i-1], idx[i])
	}
	return nil
}

// Decode implements Decoder.
func (OBJ) Decode(r io.Reader, dir string) (*Model, error) {
	var p objParser
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		p.line++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			var v [3]float32
			if v, err = p.floats(fields[1:], 3); err == nil {
				p.pos = append(p.pos, linear.V3(v))
			}
		case "vt":
			var v [3]float32
			if v, err = p.floats(fields[1:], 2); err == nil {
				p.uv = append(p.uv, linear.V2{v[0], v[1]})
			}
		case "f":
			err = p.face(fields[1:])
		case "mtllib":
			p.mtl = append(p.mtl, fields[1:]...)
		case "o", "g":
			name := "default"
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			p.start(name)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	var out []mesh.Data
	for _, d := range p.out {
		if len(d.Indices) > 0 {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("obj: %w", mesh.ErrEmpty)
	}
	m := &Model{Meshes: out}
	for _, lib := range p.mtl {
		if tex := diffuseMap(filepath.Join(dir, lib)); tex != "" {
			img, err := LoadImage(filepath.Join(dir, tex))
			if err != nil {
				log.L().Debug("obj: texture not loaded", log.String("path", tex), log.Err(err))
				continue
			}
			m.Texture = img
			break
		}
	}
	return m, nil
}

// diffuseMap returns the first map_Kd of a material
// library, or the empty string.
func diffuseMap(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 1 && fields[0] == "map_Kd" {
			// Options precede the file name.
			return fields[len(fields)-1]
		}
	}
	return ""
}
