// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"unsafe"
)

func asBytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

// FloatBytes returns the memory of s as a byte slice.
func FloatBytes(s []float32) []byte { return asBytes(s) }
