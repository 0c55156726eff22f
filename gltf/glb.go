// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// GLB header.
type glbHeader [3]uint32

// Indices in glbHeader.
const (
	headerMagic   = 0
	headerVersion = 1
	headerLength  = 2
)

// GLB chunk.
type glbChunk [2]uint32

// Indices in glbChunk.
const (
	chunkLength = 0
	chunkType   = 1
	// Then payload.
)

const (
	// glbHeader[headerMagic].
	magic = 0x46546c67

	// glbChunk[chunkType].
	typeJSON = 0x4e4f534a
	typeBIN  = 0x004e4942
)

// IsGLB returns whether r refers to a binary glTF (version 2).
// It assumes that r was positioned accordingly.
func IsGLB(r io.Reader) bool {
	var h glbHeader
	err := binary.Read(r, binary.LittleEndian, h[:])
	switch {
	case err != nil, h[headerMagic] != magic, h[headerVersion] != 2:
		return false
	default:
		return true
	}
}

// SeekJSON seeks into r until it finds the beginning
// of the JSON string.
// If successful, it returns the length of the chunk.
// r must refer to an unread GLB blob.
func SeekJSON(r io.Reader) (n int, err error) {
	if !IsGLB(r) {
		err = errors.New("gltf: not a GLB blob")
		return
	}
	var c glbChunk
	err = binary.Read(r, binary.LittleEndian, c[:])
	switch {
	case err != nil:
	case c[chunkLength] == 0 || c[chunkType] != typeJSON:
		err = errors.New("gltf: invalid GLB chunk")
	default:
		n = int(c[chunkLength])
	}
	return
}

// DecodeGLB decodes a GLB blob.
// It returns the glTF along with the payload of the BIN
// chunk, which is nil if the blob has none.
func DecodeGLB(r io.Reader) (*GLTF, []byte, error) {
	n, err := SeekJSON(r)
	if err != nil {
		return nil, nil, err
	}
	js := make([]byte, n)
	if _, err = io.ReadFull(r, js); err != nil {
		return nil, nil, err
	}
	f, err := Decode(bytes.NewReader(js))
	if err != nil {
		return nil, nil, err
	}
	var c glbChunk
	switch err = binary.Read(r, binary.LittleEndian, c[:]); {
	case err == io.EOF:
		return f, nil, nil
	case err != nil:
		return nil, nil, err
	case c[chunkType] != typeBIN:
		return nil, nil, errors.New("gltf: invalid GLB chunk")
	}
	bin := make([]byte, c[chunkLength])
	if _, err = io.ReadFull(r, bin); err != nil {
		return nil, nil, err
	}
	return f, bin, nil
}

// EncodeGLB encodes gltf and bin into w as a GLB blob.
// bin can be nil.
func EncodeGLB(w io.Writer, gltf *GLTF, bin []byte) error {
	var js bytes.Buffer
	if err := Encode(&js, gltf); err != nil {
		return err
	}
	for js.Len()%4 != 0 {
		js.WriteByte(' ')
	}
	binLen := (len(bin) + 3) &^ 3
	total := 12 + 8 + js.Len()
	if bin != nil {
		total += 8 + binLen
	}
	h := glbHeader{magic, 2, uint32(total)}
	if err := binary.Write(w, binary.LittleEndian, h[:]); err != nil {
		return err
	}
	c := glbChunk{uint32(js.Len()), typeJSON}
	if err := binary.Write(w, binary.LittleEndian, c[:]); err != nil {
		return err
	}
	if _, err := w.Write(js.Bytes()); err != nil {
		return err
	}
	if bin == nil {
		return nil
	}
	c = glbChunk{uint32(binLen), typeBIN}
	if err := binary.Write(w, binary.LittleEndian, c[:]); err != nil {
		return err
	}
	pad := make([]byte, binLen-len(bin))
	if _, err := w.Write(bin); err != nil {
		return err
	}
	_, err := w.Write(pad)
	return err
}
