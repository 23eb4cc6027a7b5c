package mathx

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Euler angles are in degrees and composed as yaw (Y) * pitch (X) * roll (Z),
// i.e. roll is applied first.

func FromEulerDegrees(e mgl32.Vec3) mgl32.Quat {
	x := mgl32.QuatRotate(mgl32.DegToRad(e[0]), mgl32.Vec3{1, 0, 0})
	y := mgl32.QuatRotate(mgl32.DegToRad(e[1]), mgl32.Vec3{0, 1, 0})
	z := mgl32.QuatRotate(mgl32.DegToRad(e[2]), mgl32.Vec3{0, 0, 1})
	return y.Mul(x).Mul(z).Normalize()
}

const gimbalEpsilon = 1e-6

func EulerDegrees(q mgl32.Quat) mgl32.Vec3 {
	q = q.Normalize()
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]

	m12 := 2 * (y*z - w*x)
	sinPitch := clamp(-m12, -1, 1)
	pitch := math32.Asin(sinPitch)

	var yaw, roll float32
	if 1-math32.Abs(sinPitch) > gimbalEpsilon {
		m02 := 2 * (x*z + w*y)
		m22 := 1 - 2*(x*x+y*y)
		m10 := 2 * (x*y + w*z)
		m11 := 1 - 2*(x*x+z*z)
		yaw = math32.Atan2(m02, m22)
		roll = math32.Atan2(m10, m11)
	} else {
		m00 := 1 - 2*(y*y+z*z)
		m20 := 2 * (x*z - w*y)
		yaw = math32.Atan2(-m20, m00)
	}

	return mgl32.Vec3{mgl32.RadToDeg(pitch), mgl32.RadToDeg(yaw), mgl32.RadToDeg(roll)}
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
