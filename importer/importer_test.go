// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package importer

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/hybrid/gltf"
	"github.com/gviegas/hybrid/linear"
	"github.com/gviegas/hybrid/mesh"
)

const cubeOBJ = `# two objects
mtllib cube.mtl
v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
v 0 0 2
vt 0 0
vt 1 0
vt 1 1
vt 0 1
o front
f 1/1 2/2 3/3 4/4
o tri
f -5/1/1 -4/2/1 -1/3/1
`

func write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func pngData(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOBJ(t *testing.T) {
	m, err := Decode("cube.obj", []byte(cubeOBJ))
	require.NoError(t, err)
	require.Len(t, m.Meshes, 2)

	front := m.Meshes[0]
	assert.Equal(t, "front", front.Name)
	assert.Len(t, front.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, front.Indices)
	// V is flipped.
	assert.Equal(t, linear.V2{0, 1}, front.Vertices[0].UV)
	assert.Equal(t, linear.V2{1, 0}, front.Vertices[2].UV)

	tri := m.Meshes[1]
	assert.Equal(t, "tri", tri.Name)
	require.Len(t, tri.Vertices, 3)
	assert.Equal(t, linear.V3{0, 0, 2}, tri.Vertices[2].Pos)
	require.NoError(t, tri.Validate())
	assert.Nil(t, m.Texture)
}

func TestOBJErrors(t *testing.T) {
	for _, src := range [...]string{
		"v 0 0 0\nf 1 2 3\n",
		"v 0 0\n",
		"v 0 0 x\n",
		"v 0 0 0\nv 1 0 0\nf 1 2\n",
		"v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/4 2 3\n",
		"# nothing\n",
	} {
		_, err := Decode("bad.obj", []byte(src))
		assert.Error(t, err, src)
	}
	_, err := Decode("empty.obj", []byte("v 0 0 0\n"))
	assert.ErrorIs(t, err, mesh.ErrEmpty)
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "cube.mtl", []byte("newmtl m\nmap_Kd -bm 1 tex.png\n"))
	write(t, dir, "tex.png", pngData(t, 2, 2, color.RGBA{255, 0, 0, 255}))
	p := write(t, dir, "cube.obj", []byte(cubeOBJ))

	m, err := LoadModel(p)
	require.NoError(t, err)
	require.Len(t, m.Meshes, 1)
	d := m.Meshes[0]
	assert.Equal(t, "cube", d.Name)
	assert.Len(t, d.Vertices, 7)
	assert.Len(t, d.Indices, 9)
	b, ok := mesh.BoundsOf(m.Meshes)
	require.True(t, ok)
	assert.Equal(t, linear.V3{}, b.Center())
	require.NotNil(t, m.Texture)
	assert.Equal(t, 2, m.Texture.Bounds().Dx())

	ds, err := Load(p)
	require.NoError(t, err)
	assert.Len(t, ds, 1)

	ds, err = Load(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)
	assert.Empty(t, ds)

	_, err = Load(write(t, dir, "model.fbx", []byte("x")))
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, Supported("model.fbx"))
	assert.True(t, Supported("MODEL.OBJ"))
}

// quadGLB creates a GLB with a quad placed by a child
// node.
func quadGLB(t *testing.T, tex []byte) []byte {
	t.Helper()
	pos := []float32{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0}
	uv := []float32{0, 1, 1, 1, 1, 0, 0, 0}
	idx := []uint32{0, 1, 2, 0, 2, 3}
	var bin bytes.Buffer
	binary.Write(&bin, binary.LittleEndian, pos)
	binary.Write(&bin, binary.LittleEndian, uv)
	binary.Write(&bin, binary.LittleEndian, idx)
	bin.Write(tex)
	i := func(x int64) *int64 { return &x }

	f := new(gltf.GLTF)
	f.Asset.Version = "2.0"
	f.Buffers = []gltf.Buffer{{ByteLength: int64(bin.Len())}}
	f.BufferViews = []gltf.BufferView{
		{ByteOffset: 0, ByteLength: 48},
		{ByteOffset: 48, ByteLength: 32},
		{ByteOffset: 80, ByteLength: 24},
	}
	f.Accessors = []gltf.Accessor{
		{BufferView: i(0), ComponentType: gltf.FLOAT, Count: 4, Type: gltf.VEC3},
		{BufferView: i(1), ComponentType: gltf.FLOAT, Count: 4, Type: gltf.VEC2},
		{BufferView: i(2), ComponentType: gltf.UNSIGNED_INT, Count: 6, Type: gltf.SCALAR},
	}
	prim := gltf.Primitive{
		Attributes: map[string]int64{gltf.POSITION: 0, gltf.TEXCOORD_0: 1},
		Indices:    i(2),
	}
	if tex != nil {
		f.BufferViews = append(f.BufferViews, gltf.BufferView{ByteOffset: 104, ByteLength: int64(len(tex))})
		f.Images = []gltf.Image{{BufferView: i(3), MimeType: gltf.PNG}}
		f.Textures = []gltf.Texture{{Source: i(0)}}
		f.Materials = []gltf.Material{{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		}}}
		prim.Material = i(0)
	}
	f.Meshes = []gltf.Mesh{{Name: "Quad", Primitives: []gltf.Primitive{prim}}}
	f.Nodes = []gltf.Node{
		{Children: []int64{1}, Translation: &[3]float32{0, 10, 0}},
		{Mesh: i(0), Scale: &[3]float32{2, 2, 2}},
	}
	f.Scenes = []gltf.Scene{{Nodes: []int64{0}}}

	var out bytes.Buffer
	require.NoError(t, gltf.EncodeGLB(&out, f, bin.Bytes()))
	return out.Bytes()
}

func TestGLTF(t *testing.T) {
	m, err := Decode("quad.glb", quadGLB(t, nil))
	require.NoError(t, err)
	require.Len(t, m.Meshes, 1)
	d := m.Meshes[0]
	assert.Equal(t, "Quad", d.Name)
	assert.Equal(t, linear.V3{-2, 8, 0}, d.Vertices[0].Pos)
	assert.Equal(t, linear.V3{2, 12, 0}, d.Vertices[2].Pos)
	assert.Equal(t, linear.V2{0, 1}, d.Vertices[0].UV)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, d.Indices)
	assert.Nil(t, m.Texture)

	m, err = Decode("quad.glb", quadGLB(t, pngData(t, 4, 4, color.RGBA{0, 255, 0, 255})))
	require.NoError(t, err)
	require.NotNil(t, m.Texture)
	assert.Equal(t, 4, m.Texture.Bounds().Dy())

	_, err = Decode("bad.gltf", []byte(`{"asset":{"version":"2.0"},"extensionsRequired":["KHR_draco_mesh_compression"]}`))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = Decode("empty.gltf", []byte(`{"asset":{"version":"2.0"}}`))
	assert.ErrorIs(t, err, mesh.ErrEmpty)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "a.obj", []byte(cubeOBJ))
	b := write(t, dir, "b.obj", []byte(cubeOBJ))
	c := write(t, dir, "c.glb", quadGLB(t, nil))

	cache := NewCache()
	m1, err := cache.Load(a)
	require.NoError(t, err)
	m1.Meshes[0].Vertices[0].Pos = linear.V3{100, 100, 100}
	m2, err := cache.Load(b)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits())
	assert.NotEqual(t, linear.V3{100, 100, 100}, m2.Meshes[0].Vertices[0].Pos)

	models, err := LoadAll(context.Background(), cache, []string{a, c, b})
	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.Len(t, models[0].Meshes[0].Vertices, 7)
	assert.Len(t, models[1].Meshes[0].Vertices, 4)
	assert.Equal(t, 2, cache.Len())

	_, err = LoadAll(context.Background(), nil, []string{a, filepath.Join(dir, "missing.obj")})
	assert.Error(t, err)
}

func TestImage(t *testing.T) {
	img, err := DecodeImage(pngData(t, 3, 2, color.RGBA{1, 2, 3, 255}))
	require.NoError(t, err)
	rgba := RGBA(img)
	assert.Equal(t, image.Rect(0, 0, 3, 2), rgba.Rect)
	assert.Equal(t, []uint8{1, 2, 3, 255}, rgba.Pix[:4])

	_, err = DecodeImage([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrUnsupported)

	big := image.NewGray(image.Rect(0, 0, MaxTextureSize*2, 4))
	rgba = RGBA(big)
	assert.Equal(t, MaxTextureSize, rgba.Rect.Dx())
	assert.Equal(t, 2, rgba.Rect.Dy())

	sub := image.NewRGBA(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 3))
	assert.Equal(t, image.Rect(0, 0, 2, 2), RGBA(sub).Rect)
}
