package grab

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/spatial"
)

// Session is a two-handed hold. It lives exactly as long as two sources grip
// the same object.
type Session struct {
	Object  models.ObjectID
	Sources [2]models.SourceID

	InitialDistance float64
	InitialScale    mgl64.Vec3
	InitialRotation mgl64.Quat
	// CenterOffset is object position minus the hands' midpoint at session start.
	CenterOffset mgl64.Vec3
}

func newSession(obj *models.SpawnedObject, a, b *models.InputSource) *Session {
	p0, p1 := a.Pose.Position, b.Pose.Position
	return &Session{
		Object:          obj.ID,
		Sources:         [2]models.SourceID{a.ID, b.ID},
		InitialDistance: spatial.Distance(p0, p1),
		InitialScale:    obj.Transform.Scale,
		InitialRotation: obj.Transform.Rotation,
		CenterOffset:    spatial.Offset(spatial.Midpoint(p0, p1), obj.Transform.Position),
	}
}

// ScaleFactor is the clamped ratio of the current hand distance to the
// distance at session start.
func (s *Session) ScaleFactor(p0, p1 mgl64.Vec3, limits Limits) float64 {
	ratio := spatial.Ratio(spatial.Distance(p0, p1), s.InitialDistance)
	return mgl64.Clamp(ratio, limits.ScaleMin, limits.ScaleMax)
}

// apply moves obj to the hands. The resulting scale is bounded per component
// by the same limits as the factor, so back to back sessions cannot compound.
func (s *Session) apply(obj *models.SpawnedObject, a, b models.Pose, limits Limits) {
	center := spatial.Midpoint(a.Position, b.Position).Add(s.CenterOffset)
	factor := s.ScaleFactor(a.Position, b.Position, limits)

	scale := s.InitialScale.Mul(factor)
	for i := range scale {
		scale[i] = mgl64.Clamp(scale[i], limits.ScaleMin, limits.ScaleMax)
	}

	obj.Transform.Position = spatial.ClampFloor(center, limits.FloorHeight)
	obj.Transform.Scale = scale
	obj.Transform.Rotation = spatial.AverageRotation(a.Orientation, b.Orientation)
}
