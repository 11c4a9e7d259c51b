// Package events names the room events published on the bus and their payloads.
package events

import (
	"time"

	"github.com/zeusync/objectroom/internal/core/models"
)

// Source is the publisher name stamped on every room event.
const Source = "room"

const (
	ObjectSpawned     = "object.spawned"
	ObjectDeleted     = "object.deleted"
	ObjectRemoved     = "object.removed"
	SpawnRejected     = "spawn.rejected"
	GrabStarted       = "grab.started"
	GrabEnded         = "grab.ended"
	TwoHandStarted    = "twohand.started"
	TwoHandEnded      = "twohand.ended"
	HapticPulse       = "haptic.pulse"
	DeleteModeChanged = "mode.delete"
)

// Object is the payload of spawn, delete and removal events.
type Object struct {
	Object models.ObjectID
	Shape  models.ShapeKind
}

// Rejected is the payload of SpawnRejected.
type Rejected struct {
	Shape  models.ShapeKind
	Reason string
}

// Grab is the payload of GrabStarted and GrabEnded.
type Grab struct {
	Source models.SourceID
	Object models.ObjectID
}

// TwoHand is the payload of TwoHandStarted and TwoHandEnded.
type TwoHand struct {
	Object  models.ObjectID
	Sources [2]models.SourceID
}

// Haptic asks the input layer to pulse a controller. Nobody acknowledges it.
type Haptic struct {
	Source    models.SourceID
	Intensity float64
	Duration  time.Duration
}

// Mode is the payload of DeleteModeChanged.
type Mode struct {
	DeleteMode bool
}
