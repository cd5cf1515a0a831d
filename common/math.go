package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	WorldUp      = mgl64.Vec3{0, 1, 0}
	WorldDown    = mgl64.Vec3{0, -1, 0}
	WorldForward = mgl64.Vec3{0, 0, 1}
)

// Cosine thresholds shared by orientation tests.
var (
	Cos45  = math.Cos(mgl64.DegToRad(45))
	Cos55  = math.Cos(mgl64.DegToRad(55))
	Cos90  = math.Cos(mgl64.DegToRad(90))
	Cos125 = math.Cos(mgl64.DegToRad(125))
)

const epsilon = 1e-8

// SafeNormalize returns the unit vector of v, or the zero vector when v has
// no length.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// ClampLength scales v down so its length does not exceed max.
func ClampLength(v mgl64.Vec3, max float64) mgl64.Vec3 {
	l := v.Len()
	if l > max && l > 0 {
		return v.Mul(max / l)
	}
	return v
}

// FlattenXZ drops the vertical component.
func FlattenXZ(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

func BasisX(m mgl64.Mat4) mgl64.Vec3 { return m.Col(0).Vec3() }
func BasisY(m mgl64.Mat4) mgl64.Vec3 { return m.Col(1).Vec3() }
func BasisZ(m mgl64.Mat4) mgl64.Vec3 { return m.Col(2).Vec3() }

func Translation(m mgl64.Mat4) mgl64.Vec3 { return m.Col(3).Vec3() }

// YawMatrix builds a rotation about world up positioned at pos.
func YawMatrix(angle float64, pos mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(mgl64.HomogRotate3DY(angle))
}

// ToLocal converts a world point into the space described by transform.
func ToLocal(transform mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, transform.Inv())
}

// ToWorld converts a local point into world space.
func ToWorld(transform mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, transform)
}

// ClosestPointOnSegment returns the closest point to p on segment ab and the
// distance between them.
func ClosestPointOnSegment(a, b, p mgl64.Vec3) (mgl64.Vec3, float64) {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < epsilon {
		return a, p.Sub(a).Len()
	}
	t := mgl64.Clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	c := a.Add(ab.Mul(t))
	return c, p.Sub(c).Len()
}
