package models

import "github.com/go-gl/mathgl/mgl64"

// SourceID names a tracked hand, controller or pointer.
type SourceID string

const (
	SourceLeft  SourceID = "left"
	SourceRight SourceID = "right"
	SourceMouse SourceID = "mouse"
)

// Pose is the position and orientation of a source for one frame.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// NewPose builds a pose with identity orientation.
func NewPose(position mgl64.Vec3) Pose {
	return Pose{Position: position, Orientation: mgl64.QuatIdent()}
}

// InputSource is one registered input device.
type InputSource struct {
	ID   SourceID
	Pose Pose

	// Held is the object the source grips, zero when empty.
	Held ObjectID
	// GrabOffset is object position minus source position captured at grab start.
	GrabOffset mgl64.Vec3
	// Hovered is the object the source currently points at.
	Hovered ObjectID
}

// Holding reports whether the source grips an object.
func (s *InputSource) Holding() bool {
	return s.Held != 0
}
