// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sizes in bytes of accessor.componentType values.
func componentSize(ct int64) int {
	switch ct {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT:
		return 2
	case UNSIGNED_INT, FLOAT:
		return 4
	}
	return 0
}

// Number of components of accessor.type values.
func typeCount(t string) int {
	switch t {
	case SCALAR:
		return 1
	case VEC2:
		return 2
	case VEC3:
		return 3
	case VEC4, MAT2:
		return 4
	case MAT3:
		return 9
	case MAT4:
		return 16
	}
	return 0
}

// uri resolves a buffer or image URI.
// Data URIs must be base64-encoded. Other URIs are
// relative to dir.
func uri(dir, s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		i := strings.Index(rest, ";base64,")
		if i < 0 {
			return nil, newErr("unsupported data URI encoding")
		}
		return base64.StdEncoding.DecodeString(rest[i+len(";base64,"):])
	}
	p, err := url.PathUnescape(s)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
}

// LoadBuffers loads the data of every buffer in f.
// External files are resolved relative to dir.
// bin is the BIN chunk of a GLB blob, used by the first
// buffer when it has no URI.
func (f *GLTF) LoadBuffers(dir string, bin []byte) ([][]byte, error) {
	bufs := make([][]byte, len(f.Buffers))
	for i, b := range f.Buffers {
		var data []byte
		switch {
		case b.URI != "":
			var err error
			if data, err = uri(dir, b.URI); err != nil {
				return nil, fmt.Errorf("gltf: buffer %d: %w", i, err)
			}
		case i == 0 && bin != nil:
			data = bin
		default:
			return nil, fmt.Errorf("gltf: buffer %d has no data", i)
		}
		if int64(len(data)) < b.ByteLength {
			return nil, fmt.Errorf("gltf: buffer %d: have %d bytes, want %d", i, len(data), b.ByteLength)
		}
		bufs[i] = data
	}
	return bufs, nil
}

// ImageData returns the encoded data of the i-th image.
func (f *GLTF) ImageData(bufs [][]byte, dir string, i int64) ([]byte, error) {
	if i < 0 || i >= int64(len(f.Images)) {
		return nil, newErr("invalid image index")
	}
	img := &f.Images[i]
	if img.BufferView != nil {
		v := *img.BufferView
		if v < 0 || v >= int64(len(f.BufferViews)) {
			return nil, newErr("invalid Image.BufferView index")
		}
		bv := &f.BufferViews[v]
		return bufs[bv.Buffer][bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
	}
	if img.URI == "" {
		return nil, newErr("image has no data")
	}
	return uri(dir, img.URI)
}

// maxCount is the largest accessor.count accepted.
const maxCount = 1 << 24

// elements calls fn with the bytes of each element of
// the i-th accessor.
func (f *GLTF) elements(bufs [][]byte, i int64, fn func(b []byte)) (*Accessor, error) {
	if i < 0 || i >= int64(len(f.Accessors)) {
		return nil, newErr("invalid accessor index")
	}
	a := &f.Accessors[i]
	if a.Sparse != nil {
		return nil, newErr("sparse accessors are not supported")
	}
	size := componentSize(a.ComponentType) * typeCount(a.Type)
	if size == 0 {
		return nil, newErr("invalid accessor format")
	}
	if a.Count < 0 || a.Count > maxCount {
		return nil, newErr("invalid accessor count")
	}
	if a.BufferView == nil {
		// All zeros.
		z := make([]byte, size)
		for range a.Count {
			fn(z)
		}
		return a, nil
	}
	if v := *a.BufferView; v < 0 || v >= int64(len(f.BufferViews)) {
		return nil, newErr("invalid Accessor.BufferView index")
	}
	bv := &f.BufferViews[*a.BufferView]
	stride := int(bv.ByteStride)
	if stride == 0 {
		stride = size
	}
	data := bufs[bv.Buffer][bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	off := int(a.ByteOffset)
	if n := int(a.Count); off < 0 || n > len(data)/stride+1 || off+(n-1)*stride+size > len(data) {
		return nil, newErr("accessor out of bounds")
	}
	for j := range int(a.Count) {
		s := off + j*stride
		fn(data[s : s+size])
	}
	return a, nil
}

// Floats reads the i-th accessor as float32 values.
// Normalized integer components are mapped to [0, 1] or
// [-1, 1].
// It returns the values and the number of components of
// each element.
func (f *GLTF) Floats(bufs [][]byte, i int64) ([]float32, int, error) {
	var out []float32
	var ct int64
	var norm bool
	if i >= 0 && i < int64(len(f.Accessors)) {
		ct = f.Accessors[i].ComponentType
		norm = f.Accessors[i].Normalized
	}
	cs := componentSize(ct)
	a, err := f.elements(bufs, i, func(b []byte) {
		for k := 0; k < len(b); k += cs {
			out = append(out, component(ct, norm, b[k:]))
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return out, typeCount(a.Type), nil
}

func component(ct int64, norm bool, b []byte) float32 {
	var v, scale float32
	switch ct {
	case FLOAT:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case BYTE:
		v, scale = float32(int8(b[0])), 127
	case UNSIGNED_BYTE:
		v, scale = float32(b[0]), 255
	case SHORT:
		v, scale = float32(int16(binary.LittleEndian.Uint16(b))), 32767
	case UNSIGNED_SHORT:
		v, scale = float32(binary.LittleEndian.Uint16(b)), 65535
	case UNSIGNED_INT:
		return float32(binary.LittleEndian.Uint32(b))
	}
	if norm {
		return max(v/scale, -1)
	}
	return v
}

// Indices reads the i-th accessor as vertex indices.
func (f *GLTF) Indices(bufs [][]byte, i int64) ([]uint32, error) {
	var out []uint32
	if i >= 0 && i < int64(len(f.Accessors)) {
		a := &f.Accessors[i]
		switch {
		case a.Type != SCALAR:
			return nil, newErr("index accessor is not SCALAR")
		case a.ComponentType != UNSIGNED_BYTE && a.ComponentType != UNSIGNED_SHORT && a.ComponentType != UNSIGNED_INT:
			return nil, newErr("invalid index component type")
		}
	}
	_, err := f.elements(bufs, i, func(b []byte) {
		switch len(b) {
		case 1:
			out = append(out, uint32(b[0]))
		case 2:
			out = append(out, uint32(binary.LittleEndian.Uint16(b)))
		default:
			out = append(out, binary.LittleEndian.Uint32(b))
		}
	})
	return out, err
}
