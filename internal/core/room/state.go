package room

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/objectroom/internal/core/models"
)

// State is what the UI layer displays. It carries no frame counter so equal
// rooms encode to equal bytes.
type State struct {
	DeleteMode bool          `json:"delete_mode"`
	Count      int           `json:"count"`
	MaxObjects int           `json:"max_objects"`
	Objects    []ObjectState `json:"objects"`
	Sources    []SourceState `json:"sources"`
}

type ObjectState struct {
	ID        models.ObjectID   `json:"id"`
	Shape     models.ShapeKind  `json:"shape"`
	Position  mgl64.Vec3        `json:"position"`
	Rotation  [4]float64        `json:"rotation"` // x, y, z, w
	Scale     mgl64.Vec3        `json:"scale"`
	Color     string            `json:"color"`
	Highlight string            `json:"highlight"`
	Status    string            `json:"status"`
	Grabbers  []models.SourceID `json:"grabbers,omitempty"`
	Fading    bool              `json:"fading,omitempty"`
}

type SourceState struct {
	ID       models.SourceID `json:"id"`
	Position mgl64.Vec3      `json:"position"`
	Held     models.ObjectID `json:"held,omitempty"`
}

// Snapshot copies the room for the UI layer. Objects are ordered by id and
// include deleted objects that are still shrinking.
func (r *Room) Snapshot() State {
	st := State{
		DeleteMode: r.deleteMode,
		Count:      len(r.objects),
		MaxObjects: r.opts.MaxObjects,
		Objects:    make([]ObjectState, 0, len(r.objects)+len(r.pending)),
	}
	for _, obj := range r.objects {
		st.Objects = append(st.Objects, objectState(obj, obj.Status(), false))
	}
	for _, p := range r.pending {
		st.Objects = append(st.Objects, objectState(p.object, models.StatusDestroyed, true))
	}
	sort.Slice(st.Objects, func(i, j int) bool { return st.Objects[i].ID < st.Objects[j].ID })

	for _, src := range r.registry.Sources() {
		st.Sources = append(st.Sources, SourceState{ID: src.ID, Position: src.Pose.Position, Held: src.Held})
	}
	return st
}

func objectState(obj *models.SpawnedObject, status models.Status, fading bool) ObjectState {
	q := obj.Transform.Rotation
	return ObjectState{
		ID:        obj.ID,
		Shape:     obj.Shape,
		Position:  obj.Transform.Position,
		Rotation:  [4]float64{q.V.X(), q.V.Y(), q.V.Z(), q.W},
		Scale:     obj.Transform.Scale,
		Color:     fmt.Sprintf("#%06x", obj.BaseColor),
		Highlight: obj.Highlight.String(),
		Status:    status.String(),
		Grabbers:  append([]models.SourceID(nil), obj.Grabbers...),
		Fading:    fading,
	}
}
