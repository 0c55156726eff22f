// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func ptr(i int64) *int64 { return &i }

// quad returns a glTF describing a unit quad and the
// contents of its single buffer.
func quad() (*GLTF, []byte) {
	pos := []float32{
		-0.5, -0.5, 0,
		0.5, -0.5, 0,
		0.5, 0.5, 0,
		-0.5, 0.5, 0,
	}
	uv := []float32{0, 1, 1, 1, 1, 0, 0, 0}
	idx := []uint16{0, 1, 2, 0, 2, 3}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, pos)
	binary.Write(&buf, binary.LittleEndian, uv)
	binary.Write(&buf, binary.LittleEndian, idx)
	data := buf.Bytes()

	f := new(GLTF)
	f.Asset.Version = "2.0"
	f.Buffers = []Buffer{{ByteLength: int64(len(data))}}
	f.BufferViews = []BufferView{
		{Buffer: 0, ByteOffset: 0, ByteLength: 48, Target: ARRAY_BUFFER},
		{Buffer: 0, ByteOffset: 48, ByteLength: 32, Target: ARRAY_BUFFER},
		{Buffer: 0, ByteOffset: 80, ByteLength: 12, Target: ELEMENT_ARRAY_BUFFER},
	}
	f.Accessors = []Accessor{
		{BufferView: ptr(0), ComponentType: FLOAT, Count: 4, Type: VEC3},
		{BufferView: ptr(1), ComponentType: FLOAT, Count: 4, Type: VEC2},
		{BufferView: ptr(2), ComponentType: UNSIGNED_SHORT, Count: 6, Type: SCALAR},
	}
	f.Meshes = []Mesh{{
		Name: "Quad",
		Primitives: []Primitive{{
			Attributes: map[string]int64{POSITION: 0, TEXCOORD_0: 1},
			Indices:    ptr(2),
		}},
	}}
	f.Nodes = []Node{{Mesh: ptr(0), Translation: &[3]float32{0, -5, 0}}}
	f.Scenes = []Scene{{Nodes: []int64{0}}}
	f.Scene = ptr(0)
	return f, data
}

func checkQuad(t *testing.T, f *GLTF, bufs [][]byte) {
	t.Helper()
	if err := f.Check(); err != nil {
		t.Fatalf("Check:\nhave %v\nwant nil", err)
	}
	pos, n, err := f.Floats(bufs, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || len(pos) != 12 || pos[3] != 0.5 || pos[7] != 0.5 {
		t.Fatalf("Floats(0):\nhave %v (%d)\nwant quad positions", pos, n)
	}
	uv, n, err := f.Floats(bufs, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || !slices.Equal(uv, []float32{0, 1, 1, 1, 1, 0, 0, 0}) {
		t.Fatalf("Floats(1):\nhave %v (%d)\nwant quad texcoords", uv, n)
	}
	idx, err := f.Indices(bufs, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint32{0, 1, 2, 0, 2, 3}; !slices.Equal(idx, want) {
		t.Fatalf("Indices(2):\nhave %v\nwant %v", idx, want)
	}
	if _, err := f.Indices(bufs, 0); err == nil {
		t.Fatal("Indices(0):\nhave nil\nwant error")
	}
}

func TestGLTF(t *testing.T) {
	f, data := quad()
	f.Buffers[0].URI = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)

	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatal(err)
	}
	g, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if g.Asset.Version != "2.0" || *g.Nodes[0].Translation != [3]float32{0, -5, 0} {
		t.Fatalf("Decode:\nhave %+v\nwant %+v", g, f)
	}
	bufs, err := g.LoadBuffers("", nil)
	if err != nil {
		t.Fatal(err)
	}
	checkQuad(t, g, bufs)
}

func TestExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	f, data := quad()
	f.Buffers[0].URI = "quad%20data.bin"
	if err := os.WriteFile(filepath.Join(dir, "quad data.bin"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	bufs, err := f.LoadBuffers(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkQuad(t, f, bufs)

	f.Buffers[0].ByteLength++
	if _, err := f.LoadBuffers(dir, nil); err == nil {
		t.Fatal("LoadBuffers (short file):\nhave nil\nwant error")
	}
}

func TestGLB(t *testing.T) {
	f, data := quad()
	var buf bytes.Buffer
	if err := EncodeGLB(&buf, f, data); err != nil {
		t.Fatal(err)
	}
	if buf.Len()%4 != 0 {
		t.Fatalf("EncodeGLB: length %d is not aligned", buf.Len())
	}
	b := buf.Bytes()
	if !IsGLB(bytes.NewReader(b)) {
		t.Fatal("IsGLB(b):\nhave false\nwant true")
	}
	r := bytes.NewReader([]byte(`{"asset:"{"version":"2.0"}}`))
	if IsGLB(r) {
		t.Fatal("IsGLB(r):\nhave true\nwant false")
	}
	n, err := SeekJSON(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if n <= 0 || n%4 != 0 {
		t.Fatalf("SeekJSON:\nhave %d\nwant aligned n > 0", n)
	}
	g, bin, err := DecodeGLB(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bin[:len(data)], data) {
		t.Fatal("DecodeGLB: BIN chunk mismatch")
	}
	bufs, err := g.LoadBuffers("", bin)
	if err != nil {
		t.Fatal(err)
	}
	checkQuad(t, g, bufs)

	buf.Reset()
	if err := EncodeGLB(&buf, f, nil); err != nil {
		t.Fatal(err)
	}
	if _, bin, err = DecodeGLB(&buf); err != nil || bin != nil {
		t.Fatalf("DecodeGLB (no BIN):\nhave %v, %v\nwant nil, nil", bin, err)
	}
}

func TestCheck(t *testing.T) {
	for i, fn := range [...]func(*GLTF){
		func(f *GLTF) { f.Scene = ptr(1) },
		func(f *GLTF) { f.Scenes[0].Nodes = []int64{3} },
		func(f *GLTF) { f.BufferViews[0].Buffer = 1 },
		func(f *GLTF) { f.BufferViews[2].ByteLength = 1000 },
		func(f *GLTF) { f.BufferViews[0].ByteStride = 6 },
		func(f *GLTF) { f.Accessors[0].BufferView = ptr(3) },
		func(f *GLTF) { f.Accessors[0].ComponentType = 0 },
		func(f *GLTF) { f.Accessors[0].Count = 0 },
		func(f *GLTF) { f.Accessors[0].Type = "VEC5" },
		func(f *GLTF) { f.Meshes[0].Primitives = nil },
		func(f *GLTF) { f.Meshes[0].Primitives[0].Indices = ptr(9) },
		func(f *GLTF) { f.Meshes[0].Primitives[0].Material = ptr(0) },
		func(f *GLTF) { f.Nodes[0].Mesh = ptr(1) },
		func(f *GLTF) { f.Nodes[0].Children = []int64{1} },
	} {
		f, _ := quad()
		fn(f)
		if err := f.Check(); err == nil {
			t.Fatalf("Check (case %d):\nhave nil\nwant error", i)
		}
	}
}

func TestAccessorBounds(t *testing.T) {
	for i, fn := range [...]func(*GLTF){
		func(f *GLTF) { f.Accessors[0].Count = math.MaxInt64/12 + 2 },
		func(f *GLTF) { f.Accessors[0].Count = 5 },
		func(f *GLTF) { f.Accessors[0].Count = -1 },
		func(f *GLTF) { f.Accessors[0].ByteOffset = -12 },
		func(f *GLTF) { f.Accessors[0].BufferView = nil; f.Accessors[0].Count = math.MaxInt64 },
	} {
		f, data := quad()
		fn(f)
		if _, _, err := f.Floats([][]byte{data}, 0); err == nil {
			t.Fatalf("Floats (case %d):\nhave nil\nwant error", i)
		}
	}
}

func TestComponent(t *testing.T) {
	for _, x := range [...]struct {
		ct   int64
		norm bool
		b    []byte
		want float32
	}{
		{FLOAT, false, binary.LittleEndian.AppendUint32(nil, math.Float32bits(1.5)), 1.5},
		{UNSIGNED_BYTE, true, []byte{255}, 1},
		{UNSIGNED_BYTE, false, []byte{255}, 255},
		{BYTE, true, []byte{0x80}, -1},
		{UNSIGNED_SHORT, true, []byte{0xff, 0xff}, 1},
		{SHORT, true, []byte{0x01, 0x80}, -1},
	} {
		if have := component(x.ct, x.norm, x.b); have != x.want {
			t.Fatalf("component(%d, %t, %v):\nhave %v\nwant %v", x.ct, x.norm, x.b, have, x.want)
		}
	}
}
