// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package linear implements math for 3D graphics.
//
// Matrices are column-major and transform column vectors
// (p' = M ⋅ p). A transform described as S ⋅ R ⋅ T in the
// row-vector convention is T ⋅ R ⋅ S here, which is also
// the layout that the shaders consume.
package linear

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// V2 is a 2-component vector of float32.
type V2 = mgl32.Vec2

// V3 is a 3-component vector of float32.
type V3 = mgl32.Vec3

// V4 is a 4-component vector of float32.
type V4 = mgl32.Vec4

// M4 is a column-major 4x4 matrix of float32.
type M4 = mgl32.Mat4

// I returns an identity matrix.
func I() M4 { return mgl32.Ident4() }

// Scaling returns a matrix that scales by s.
func Scaling(s V3) M4 { return mgl32.Scale3D(s[0], s[1], s[2]) }

// Translation returns a matrix that translates by p.
func Translation(p V3) M4 { return mgl32.Translate3D(p[0], p[1], p[2]) }

// RotationY returns a matrix that rotates by yaw radians
// about the y axis.
func RotationY(yaw float32) M4 { return mgl32.HomogRotate3DY(yaw) }

// Rotation returns a matrix that rotates by the Euler
// angles in r (radians).
// r[0] is pitch (x axis), r[1] is yaw (y axis) and r[2] is
// roll (z axis). Roll is applied first, then pitch, then yaw.
func Rotation(r V3) M4 {
	y := mgl32.HomogRotate3DY(r[1])
	x := mgl32.HomogRotate3DX(r[0])
	z := mgl32.HomogRotate3DZ(r[2])
	return y.Mul4(x).Mul4(z)
}

// Compose returns the world matrix of an object that is
// scaled, then rotated, then translated.
func Compose(pos, rot, scale V3) M4 {
	return Translation(pos).Mul4(Rotation(rot)).Mul4(Scaling(scale))
}

// ComposeYaw is like Compose but only considers the
// rotation about the y axis.
func ComposeYaw(pos V3, yaw float32, scale V3) M4 {
	return Translation(pos).Mul4(RotationY(yaw)).Mul4(Scaling(scale))
}

// MinLightHeight is the smallest light height (absolute)
// that ShadowProjection accepts.
const MinLightHeight = 1e-4

// ErrDegenerateLight means that a light is too close to
// the ground plane to project shadows onto it.
var ErrDegenerateLight = errors.New("linear: light height too close to zero")

// ShadowProjection returns a matrix that flattens geometry
// onto the y=0 plane along the direction of a light located
// at l. It maps p to p - (p.y / l.y) ⋅ l, so points on the
// plane are left unchanged.
// If |l.y| < MinLightHeight, it returns ErrDegenerateLight.
func ShadowProjection(l V3) (M4, error) {
	if math32.Abs(l[1]) < MinLightHeight || !finite(l[:]) {
		return M4{}, ErrDegenerateLight
	}
	inv := 1 / l[1]
	return M4{
		1, 0, 0, 0,
		-l[0] * inv, 0, -l[2] * inv, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}, nil
}

// TransformPoint returns m ⋅ (p, 1), divided by w.
func TransformPoint(m *M4, p V3) V3 {
	v := m.Mul4x1(p.Vec4(1))
	if v[3] != 0 && v[3] != 1 {
		return v.Vec3().Mul(1 / v[3])
	}
	return v.Vec3()
}

// Rad converts each component of deg from degrees to
// radians.
func Rad(deg V3) V3 {
	return V3{mgl32.DegToRad(deg[0]), mgl32.DegToRad(deg[1]), mgl32.DegToRad(deg[2])}
}

// Deg converts each component of rad from radians to
// degrees.
func Deg(rad V3) V3 {
	return V3{mgl32.RadToDeg(rad[0]), mgl32.RadToDeg(rad[1]), mgl32.RadToDeg(rad[2])}
}

// Finite returns whether m has no NaN/Inf elements.
func Finite(m *M4) bool { return finite(m[:]) }

func finite(s []float32) bool {
	for _, x := range s {
		if math32.IsNaN(x) || math32.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Bytes returns the memory of m as a byte slice.
// Its layout is the layout expected by constant buffers.
func Bytes(m *M4) []byte { return asBytes(m[:]) }
