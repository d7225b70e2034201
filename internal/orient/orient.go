// Package orient implements the rotation math for composing keyframed
// orientations: XYZ Euler angles in degrees about the fixed world axes,
// with quaternion composition for off-axis rotation steps.
package orient

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Euler is an orientation given as successive rotations about the
// world X, then Y, then Z axes, in degrees.
type Euler struct {
	X, Y, Z float64
}

// FromSlice builds an Euler from a keyframe value vector. Short
// vectors leave the missing components at zero.
func FromSlice(v []float64) Euler {
	var e Euler
	if len(v) > 0 {
		e.X = v[0]
	}
	if len(v) > 1 {
		e.Y = v[1]
	}
	if len(v) > 2 {
		e.Z = v[2]
	}
	return e
}

// Slice returns the orientation as a keyframe value vector.
func (e Euler) Slice() []float64 {
	return []float64{e.X, e.Y, e.Z}
}

// Add returns the componentwise sum of two orientations.
func (e Euler) Add(o Euler) Euler {
	return Euler{e.X + o.X, e.Y + o.Y, e.Z + o.Z}
}

// Sub returns the componentwise difference of two orientations.
func (e Euler) Sub(o Euler) Euler {
	return Euler{e.X - o.X, e.Y - o.Y, e.Z - o.Z}
}

// Quat converts the orientation to a unit quaternion. The XYZ order
// means the combined rotation is Rz*Ry*Rx.
func (e Euler) Quat() quat.Number {
	qx := axisQuat(r3.Vec{X: 1}, e.X)
	qy := axisQuat(r3.Vec{Y: 1}, e.Y)
	qz := axisQuat(r3.Vec{Z: 1}, e.Z)
	return quat.Mul(qz, quat.Mul(qy, qx))
}

// FromQuat extracts XYZ Euler angles in degrees from a rotation
// quaternion. Angles come back wrapped to (-180, 180].
func FromQuat(q quat.Number) Euler {
	if a := quat.Abs(q); a != 0 && a != 1 {
		q = quat.Scale(1/a, q)
	}
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	// Rotation matrix elements needed for Rz*Ry*Rx extraction.
	r00 := 1 - 2*(y*y+z*z)
	r10 := 2 * (x*y + w*z)
	r20 := 2 * (x*z - w*y)
	r21 := 2 * (y*z + w*x)
	r22 := 1 - 2*(x*x+y*y)
	r11 := 1 - 2*(x*x+z*z)
	r12 := 2 * (y*z - w*x)

	var e Euler
	sy := -r20
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	e.Y = deg(math.Asin(sy))
	if math.Abs(sy) < 1-1e-9 {
		e.X = deg(math.Atan2(r21, r22))
		e.Z = deg(math.Atan2(r10, r00))
	} else {
		// Gimbal lock: X and Z rotate about the same world axis, fold
		// the whole twist into X.
		e.X = deg(math.Atan2(-r12, r11))
		e.Z = 0
	}
	return e
}

// AxisAngle builds the quaternion rotating by the given degrees about
// the axis. Positive degrees rotate counterclockwise when viewed from
// the axis tip. A zero axis yields the identity rotation.
func AxisAngle(axis r3.Vec, degrees float64) quat.Number {
	if r3.Norm(axis) == 0 {
		return quat.Number{Real: 1}
	}
	return axisQuat(r3.Unit(axis), degrees)
}

// Rotate applies a world-space rotation to an orientation.
func Rotate(e Euler, rot quat.Number) Euler {
	return FromQuat(quat.Mul(rot, e.Quat()))
}

// LocalZ returns the world-space direction of an oriented object's
// local Z axis.
func LocalZ(e Euler) r3.Vec {
	return r3.Rotation(e.Quat()).Rotate(r3.Vec{Z: 1})
}

// axisQuat assumes a unit axis.
func axisQuat(axis r3.Vec, degrees float64) quat.Number {
	half := rad(degrees) / 2
	s := math.Sin(half)
	return quat.Number{
		Real: math.Cos(half),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

func rad(degrees float64) float64 { return degrees * math.Pi / 180 }

func deg(radians float64) float64 { return radians * 180 / math.Pi }
