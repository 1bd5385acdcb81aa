package entity

import "github.com/go-gl/mathgl/mgl64"

// Pose is an entity's placement in the world. Y is up.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose creates a pose at position facing yawDeg degrees around the Y axis.
func NewPose(position mgl64.Vec3, yawDeg float64) Pose {
	return Pose{
		Position: position,
		Rotation: mgl64.QuatRotate(mgl64.DegToRad(yawDeg), mgl64.Vec3{0, 1, 0}),
	}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// Forward returns the unit direction the rotation faces (local +Z).
func Forward(rot mgl64.Quat) mgl64.Vec3 {
	return rot.Rotate(mgl64.Vec3{0, 0, 1})
}
