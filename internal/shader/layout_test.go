// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/hybrid/linear"
)

func TestViewProjLayout(t *testing.T) {
	v := linear.Translation(linear.V3{1, 2, 3})
	p := linear.Scaling(linear.V3{4, 5, 6})

	var vl ViewLayout
	vl.SetView(&v)
	assert.Equal(t, v, vl.View())
	require.Len(t, vl.Bytes(), ViewSize)

	var pl ProjLayout
	pl.SetProj(&p)
	assert.Equal(t, p, pl.Proj())
	require.Len(t, pl.Bytes(), ProjSize)
}

func TestModelLayout(t *testing.T) {
	w := linear.Compose(linear.V3{0, -5, 0}, linear.V3{0.1, 0.2, 0.3}, linear.V3{1, 2, 3})
	c := linear.V4{0, 0, 0, 0.5}

	var l ModelLayout
	l.SetWorld(&w)
	l.SetColor(&c)
	assert.Equal(t, w, l.World())
	assert.Equal(t, c, l.Color())
	assert.Equal(t, float32(0.5), l[19])

	b := l.Bytes()
	require.Len(t, b, ModelSize)

	var dec ModelLayout
	n := Decode(dec[:], b)
	assert.Equal(t, len(dec), n)
	assert.Equal(t, l, dec)
}

func TestDecodeShort(t *testing.T) {
	var l ViewLayout
	l[0], l[1] = 1, 2
	var dst [8]float32
	n := Decode(dst[:], l.Bytes()[:8])
	assert.Equal(t, 2, n)
	assert.Equal(t, float32(2), dst[1])
	assert.Zero(t, Decode(dst[:], nil))
}
