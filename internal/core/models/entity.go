package models

import "github.com/go-gl/mathgl/mgl64"

// ObjectID identifies a spawned object. Zero means "no object".
type ObjectID uint64

// Transform is the spatial state of an object.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewTransform creates an identity transform at position.
func NewTransform(position mgl64.Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Highlight is the visual state the render layer draws an object with.
type Highlight uint8

const (
	HighlightNormal Highlight = iota
	HighlightHovered
	HighlightGrabbed
	HighlightDeleteArmed
)

func (h Highlight) String() string {
	switch h {
	case HighlightHovered:
		return "hovered"
	case HighlightGrabbed:
		return "grabbed"
	case HighlightDeleteArmed:
		return "delete-armed"
	default:
		return "normal"
	}
}

// Status is the interaction state of an object.
type Status uint8

const (
	StatusFree Status = iota
	StatusSingleHeld
	StatusDualHeld
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusSingleHeld:
		return "single-held"
	case StatusDualHeld:
		return "dual-held"
	case StatusDestroyed:
		return "destroyed"
	default:
		return "free"
	}
}

// MaxGrabbers is the number of sources that may hold one object at a time.
const MaxGrabbers = 2

// SpawnedObject is a user created primitive.
type SpawnedObject struct {
	ID        ObjectID
	Shape     ShapeKind
	Transform Transform
	BaseColor uint32
	Highlight Highlight

	// Grabbers lists the sources holding the object in grab order.
	Grabbers []SourceID
}

// Status derives the interaction state from the grabber list.
func (o *SpawnedObject) Status() Status {
	switch len(o.Grabbers) {
	case 0:
		return StatusFree
	case 1:
		return StatusSingleHeld
	default:
		return StatusDualHeld
	}
}

// HeldBy reports whether source currently holds the object.
func (o *SpawnedObject) HeldBy(source SourceID) bool {
	for _, s := range o.Grabbers {
		if s == source {
			return true
		}
	}
	return false
}

// AddGrabber appends source to the grabber list. It returns false when the
// object is already at capacity or source is already listed.
func (o *SpawnedObject) AddGrabber(source SourceID) bool {
	if o.HeldBy(source) || len(o.Grabbers) >= MaxGrabbers {
		return false
	}
	o.Grabbers = append(o.Grabbers, source)
	return true
}

// RemoveGrabber drops source from the grabber list, keeping order.
func (o *SpawnedObject) RemoveGrabber(source SourceID) {
	for i, s := range o.Grabbers {
		if s == source {
			o.Grabbers = append(o.Grabbers[:i], o.Grabbers[i+1:]...)
			return
		}
	}
}
