// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/internal/shader"
	"github.com/gviegas/hybrid/linear"
)

// Vertices with clip w at or below this are rejected.
const minW = 1e-5

// Wireframe edge threshold in barycentric units.
const lineWidth = 0.02

// DrawIndexed implements driver.Context.
func (c *Context) DrawIndexed(idxCount, startIdx, baseVert int) {
	switch {
	case c.rt == nil || c.rt.dead:
		invalid("DrawIndexed", "no render target")
		return
	case c.vs == nil || c.vs.dead || c.ps == nil || c.ps.dead:
		invalid("DrawIndexed", "missing shader")
		return
	case c.vb == nil || c.vb.dead || c.ib == nil || c.ib.dead:
		invalid("DrawIndexed", "missing vertex/index buffer")
		return
	case c.top != driver.TTriangle:
		invalid("DrawIndexed", "only triangle lists are rasterized")
		return
	case idxCount < 0 || startIdx < 0:
		invalid("DrawIndexed", fmt.Sprintf("bad range [%d:+%d]", startIdx, idxCount))
		return
	}
	var u uniforms
	if !c.uniforms(&u) {
		invalid("DrawIndexed", "missing constant buffer")
		return
	}
	stride := c.vb.stride
	if stride == 0 {
		stride = shader.VertexSize
	}
	c.stats.Draws++
	first := startIdx + c.ibo/shader.IndexSize
	var tri [3]varying
	var vtx [5]float32
	for i := 0; i+2 < idxCount; i += 3 {
		ok := true
		for j := range tri {
			idx, valid := c.ib.index(first + i + j)
			if !valid || !c.vb.floats(vtx[:], c.vbo+(baseVert+int(idx))*stride) {
				ok = false
				break
			}
			pos := linear.V3{vtx[0], vtx[1], vtx[2]}
			uv := linear.V2{vtx[3], vtx[4]}
			tri[j] = c.vs.vs(&u, pos, uv)
		}
		if !ok {
			invalid("DrawIndexed", "index/vertex out of bounds")
			return
		}
		c.stats.Triangles++
		c.triangle(&u, &tri)
	}
}

type screenVert struct {
	x, y, z float32
	invW    float32
	uv      linear.V2
}

func edge(a, b *screenVert, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func (c *Context) triangle(u *uniforms, tri *[3]varying) {
	var sv [3]screenVert
	vp := &c.vp
	for i := range tri {
		w := tri[i].clip[3]
		if w <= minW {
			c.stats.Culled++
			return
		}
		inv := 1 / w
		nx, ny, nz := tri[i].clip[0]*inv, tri[i].clip[1]*inv, tri[i].clip[2]*inv
		sv[i] = screenVert{
			x:    vp.X + (nx+1)*0.5*vp.Width,
			y:    vp.Y + (1-ny)*0.5*vp.Height,
			z:    vp.Znear + (nz+1)*0.5*(vp.Zfar-vp.Znear),
			invW: inv,
			uv:   tri[i].uv,
		}
	}
	area := edge(&sv[0], &sv[1], sv[2].x, sv[2].y)
	if area == 0 || math32.IsNaN(area) {
		c.stats.Culled++
		return
	}
	// Screen space has y pointing down, so a negative area
	// means counter-clockwise winding in NDC.
	front := (area < 0) != c.raster.Clockwise
	if (c.raster.Cull == driver.CBack && !front) || (c.raster.Cull == driver.CFront && front) {
		c.stats.Culled++
		return
	}

	w, h := c.rt.Width(), c.rt.Height()
	x0 := max(int(math32.Floor(min(sv[0].x, sv[1].x, sv[2].x))), int(vp.X), 0)
	y0 := max(int(math32.Floor(min(sv[0].y, sv[1].y, sv[2].y))), int(vp.Y), 0)
	x1 := min(int(math32.Ceil(max(sv[0].x, sv[1].x, sv[2].x))), int(vp.X+vp.Width), w)
	y1 := min(int(math32.Ceil(max(sv[0].y, sv[1].y, sv[2].y))), int(vp.Y+vp.Height), h)
	invArea := 1 / area

	for y := y0; y < y1; y++ {
		py := float32(y) + 0.5
		for x := x0; x < x1; x++ {
			px := float32(x) + 0.5
			b0 := edge(&sv[1], &sv[2], px, py) * invArea
			b1 := edge(&sv[2], &sv[0], px, py) * invArea
			b2 := edge(&sv[0], &sv[1], px, py) * invArea
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			if c.raster.Fill == driver.FLines && min(b0, b1, b2) > lineWidth {
				continue
			}
			z := b0*sv[0].z + b1*sv[1].z + b2*sv[2].z
			if c.raster.DepthClip && (z < vp.Znear || z > vp.Zfar) {
				continue
			}
			i := y*w + x
			if c.depth.DepthTest && !compare(c.depth.DepthFunc, z, c.rt.depth[i]) {
				continue
			}
			iw := b0*sv[0].invW + b1*sv[1].invW + b2*sv[2].invW
			var uv linear.V2
			for k := range uv {
				uv[k] = (b0*sv[0].uv[k]*sv[0].invW + b1*sv[1].uv[k]*sv[1].invW + b2*sv[2].uv[k]*sv[2].invW) / iw
			}
			c.write(i*4, c.ps.ps(c, u, uv))
			if c.depth.DepthTest && c.depth.DepthWrite {
				c.rt.depth[i] = z
			}
			c.stats.Pixels++
		}
	}
}

func compare(f driver.CmpFunc, a, b float32) bool {
	switch f {
	case driver.CNever:
		return false
	case driver.CLess:
		return a < b
	case driver.CEqual:
		return a == b
	case driver.CLessEqual:
		return a <= b
	case driver.CGreater:
		return a > b
	default:
		return true
	}
}

func blendFactor(f driver.BlendFac, srcA float32) float32 {
	switch f {
	case driver.BZero:
		return 0
	case driver.BSrcAlpha:
		return srcA
	case driver.BInvSrcAlpha:
		return 1 - srcA
	default:
		return 1
	}
}

// write stores src at byte offset off of the back buffer.
func (c *Context) write(off int, src linear.V4) {
	dst := c.rt.back.Pix[off : off+4 : off+4]
	if c.blend.Enable {
		a := src[3]
		fs, fd := blendFactor(c.blend.SrcFac, a), blendFactor(c.blend.DstFac, a)
		for k := range 3 {
			src[k] = src[k]*fs + float32(dst[k])/255*fd
		}
		fs, fd = blendFactor(c.blend.SrcAlpha, a), blendFactor(c.blend.DstAlpha, a)
		src[3] = a*fs + float32(dst[3])/255*fd
	}
	// The mask is a 4-bit RGBA write mask.
	for k := range 4 {
		if c.blendMask&(1<<k) != 0 {
			dst[k] = unorm(src[k])
		}
	}
}

func unorm(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// sample reads the texture bound to slot tex through the
// sampler bound to slot splr.
// Unbound textures read as opaque white.
func (c *Context) sample(tex, splr int, uv linear.V2) linear.V4 {
	t := c.tex[tex]
	if t == nil || t.dead {
		return linear.V4{1, 1, 1, 1}
	}
	desc := driver.SamplerDesc{Filter: driver.FLinear, AddrU: driver.AClamp, AddrV: driver.AClamp}
	if s := c.splr[splr]; s != nil && !s.dead {
		desc = s.desc
	}
	w, h := t.Width(), t.Height()
	if desc.Filter == driver.FNearest {
		x := address(desc.AddrU, int(math32.Floor(uv[0]*float32(w))), w)
		y := address(desc.AddrV, int(math32.Floor(uv[1]*float32(h))), h)
		return t.texel(x, y)
	}
	fx := uv[0]*float32(w) - 0.5
	fy := uv[1]*float32(h) - 0.5
	ix, iy := math32.Floor(fx), math32.Floor(fy)
	ax, ay := fx-ix, fy-iy
	x0 := address(desc.AddrU, int(ix), w)
	x1 := address(desc.AddrU, int(ix)+1, w)
	y0 := address(desc.AddrV, int(iy), h)
	y1 := address(desc.AddrV, int(iy)+1, h)
	t00, t10 := t.texel(x0, y0), t.texel(x1, y0)
	t01, t11 := t.texel(x0, y1), t.texel(x1, y1)
	var r linear.V4
	for k := range r {
		top := t00[k] + (t10[k]-t00[k])*ax
		bot := t01[k] + (t11[k]-t01[k])*ax
		r[k] = top + (bot-top)*ay
	}
	return r
}

// address maps texel coordinate i into [0, n).
func address(mode driver.AddrMode, i, n int) int {
	switch mode {
	case driver.AWrap:
		return (i%n + n) % n
	case driver.AMirror:
		p := (i%(2*n) + 2*n) % (2 * n)
		if p >= n {
			p = 2*n - 1 - p
		}
		return p
	default:
		return min(max(i, 0), n-1)
	}
}

func (t *texture) texel(x, y int) linear.V4 {
	p := t.img.Pix[t.img.PixOffset(x, y):]
	return linear.V4{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
}
