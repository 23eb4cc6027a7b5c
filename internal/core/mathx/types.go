// Package mathx holds the value types remote parameters can drive that
// mgl32 does not already provide, plus euler conversion helpers.
package mathx

import "github.com/go-gl/mathgl/mgl32"

type Vec2i [2]int

type Vec3i [3]int

// Color is a linear RGBA color with components nominally in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Pose is a rigid transform without scale.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func (p Pose) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Rotation.Normalize().Mat4())
}

// PoseFromMatrix drops any scale or shear in m.
func PoseFromMatrix(m mgl32.Mat4) Pose {
	return Pose{
		Position: m.Col(3).Vec3(),
		Rotation: mgl32.Mat4ToQuat(m).Normalize(),
	}
}
