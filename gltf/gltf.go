// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package gltf implements the subset of glTF 2.0 that the
// importer needs: static meshes, their node hierarchy and
// base color textures.
// Animation, skinning, cameras and morph targets are
// decoded as opaque JSON and otherwise ignored.
package gltf

import (
	"encoding/json"
	"io"
)

// Root glTF object.
type GLTF struct {
	ExtensionsUsed     []string   `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string   `json:"extensionsRequired,omitempty"`
	Accessors          []Accessor `json:"accessors,omitempty"`
	Asset              struct {
		Copyright  string `json:"copyright,omitempty"`
		Generator  string `json:"generator,omitempty"`
		Version    string `json:"version"`
		MinVersion string `json:"minVersion,omitempty"`
	} `json:"asset"`
	Buffers     []Buffer        `json:"buffers,omitempty"`
	BufferViews []BufferView    `json:"bufferViews,omitempty"`
	Images      []Image         `json:"images,omitempty"`
	Materials   []Material      `json:"materials,omitempty"`
	Meshes      []Mesh          `json:"meshes,omitempty"`
	Nodes       []Node          `json:"nodes,omitempty"`
	Samplers    []Sampler       `json:"samplers,omitempty"`
	Scene       *int64          `json:"scene,omitempty"`
	Scenes      []Scene         `json:"scenes,omitempty"`
	Textures    []Texture       `json:"textures,omitempty"`
	Animations  json.RawMessage `json:"animations,omitempty"`
	Skins       json.RawMessage `json:"skins,omitempty"`
	Cameras     json.RawMessage `json:"cameras,omitempty"`
	Extensions  any             `json:"extensions,omitempty"`
	Extras      any             `json:"extras,omitempty"`
}

// glTF.accessors' element.
type Accessor struct {
	BufferView    *int64    `json:"bufferView,omitempty"`
	ByteOffset    int64     `json:"byteOffset,omitempty"` // Default is 0.
	ComponentType int64     `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int64     `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
	Sparse        any       `json:"sparse,omitempty"`
	Name          string    `json:"name,omitempty"`
}

// accessor.*.componentType values.
const (
	BYTE           = 5120
	UNSIGNED_BYTE  = 5121
	SHORT          = 5122
	UNSIGNED_SHORT = 5123
	UNSIGNED_INT   = 5125
	FLOAT          = 5126
)

// accessor.type values.
const (
	SCALAR = "SCALAR"
	VEC2   = "VEC2"
	VEC3   = "VEC3"
	VEC4   = "VEC4"
	MAT2   = "MAT2"
	MAT3   = "MAT3"
	MAT4   = "MAT4"
)

// glTF.buffers' element.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int64  `json:"byteLength"`
	Name       string `json:"name,omitempty"`
}

// glTF.bufferViews' element.
type BufferView struct {
	Buffer     int64  `json:"buffer"`
	ByteOffset int64  `json:"byteOffset,omitempty"` // Default is 0.
	ByteLength int64  `json:"byteLength"`
	ByteStride int64  `json:"byteStride,omitempty"` // 0 for tightly packed.
	Target     int64  `json:"target,omitempty"`     // 0 for no hint.
	Name       string `json:"name,omitempty"`
}

// bufferView.target values.
const (
	ARRAY_BUFFER = iota + 34962
	ELEMENT_ARRAY_BUFFER
)

// glTF.images' element.
type Image struct {
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int64 `json:"bufferView,omitempty"`
	Name       string `json:"name,omitempty"`
}

// image.mimeType values.
const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
)

// glTF.materials' element.
type Material struct {
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`   // Default is "OPAQUE".
	DoubleSided          bool                  `json:"doubleSided,omitempty"` // Default is false.
	Name                 string                `json:"name,omitempty"`
}

// material.pbrMetallicRoughness.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"` // Default is [1, 1, 1, 1].
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
}

// material.alphaMode values.
const (
	OPAQUE = "OPAQUE"
	MASK   = "MASK"
	BLEND  = "BLEND"
)

// glTF.meshes' element.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
	Name       string      `json:"name,omitempty"`
}

// mesh.primitives' element.
type Primitive struct {
	Attributes map[string]int64 `json:"attributes"`
	Indices    *int64           `json:"indices,omitempty"`
	Material   *int64           `json:"material,omitempty"`
	Mode       *int64           `json:"mode,omitempty"` // Default is 4.
}

// mesh.primitive.attributes keys.
const (
	POSITION   = "POSITION"
	TEXCOORD_0 = "TEXCOORD_0"
)

// mesh.primitive.mode values.
const (
	POINTS = iota
	LINES
	LINE_LOOP
	LINE_STRIP
	TRIANGLES
	TRIANGLE_STRIP
	TRIANGLE_FAN
)

// glTF.nodes' element.
type Node struct {
	Children    []int64      `json:"children,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"` // Default is identity.
	Mesh        *int64       `json:"mesh,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`    // Default is [0, 0, 0, 1].
	Scale       *[3]float32  `json:"scale,omitempty"`       // Default is [1, 1, 1].
	Translation *[3]float32  `json:"translation,omitempty"` // Default is [0, 0, 0].
	Name        string       `json:"name,omitempty"`
}

// glTF.samplers' element.
type Sampler struct {
	// Valid filter/wrap mode values differ from 0.
	MagFilter int64  `json:"magFilter,omitempty"`
	MinFilter int64  `json:"minFilter,omitempty"`
	WrapS     int64  `json:"wrapS,omitempty"` // Default is 10497.
	WrapT     int64  `json:"wrapT,omitempty"` // Default is 10497.
	Name      string `json:"name,omitempty"`
}

// sampler.*Filter values.
const (
	NEAREST                = 9728
	FLINEAR                = 9729
	NEAREST_MIPMAP_NEAREST = 9984
	LINEAR_MIPMAP_NEAREST  = 9985
	NEAREST_MIPMAP_LINEAR  = 9986
	LINEAR_MIPMAP_LINEAR   = 9987
)

// sampler.wrap* values.
const (
	CLAMP_TO_EDGE   = 33071
	MIRRORED_REPEAT = 33648
	REPEAT          = 10497
)

// glTF.scenes' element.
type Scene struct {
	Nodes []int64 `json:"nodes,omitempty"`
	Name  string  `json:"name,omitempty"`
}

// glTF.textures' element.
type Texture struct {
	Sampler *int64 `json:"sampler,omitempty"`
	Source  *int64 `json:"source,omitempty"`
	Name    string `json:"name,omitempty"`
}

// textureInfo.
type TextureInfo struct {
	Index    int64 `json:"index"`
	TexCoord int64 `json:"texCoord,omitempty"` // Default is TEXCOORD_0.
}

// Encode encodes gltf into w.
func Encode(w io.Writer, gltf *GLTF) error {
	return json.NewEncoder(w).Encode(gltf)
}

// Decode decodes r into a new GLTF instance.
func Decode(r io.Reader) (*GLTF, error) {
	var gltf GLTF
	if err := json.NewDecoder(r).Decode(&gltf); err != nil {
		return nil, err
	}
	return &gltf, nil
}
