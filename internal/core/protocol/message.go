// Package protocol is the JSON wire format spoken between the room server and
// browser or SDK clients over websocket.
package protocol

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/room"
)

// CommandType names an inbound request from the UI or input layer.
type CommandType string

const (
	CommandPose             CommandType = "pose"
	CommandPress            CommandType = "press"
	CommandRelease          CommandType = "release"
	CommandHover            CommandType = "hover"
	CommandSpawn            CommandType = "spawn"
	CommandDelete           CommandType = "delete"
	CommandToggleDeleteMode CommandType = "toggle_delete_mode"
	CommandClearAll         CommandType = "clear_all"
)

// Command is one inbound request. Which fields matter depends on Type.
type Command struct {
	Type        CommandType     `json:"type"`
	Source      models.SourceID `json:"source,omitempty"`
	Position    *[3]float64     `json:"position,omitempty"`
	Orientation *[4]float64     `json:"orientation,omitempty"` // x, y, z, w
	Target      *Target         `json:"target,omitempty"`
	Shape       string          `json:"shape,omitempty"`
	Object      models.ObjectID `json:"object,omitempty"`
}

// Target is the wire form of models.Target.
type Target struct {
	Role   string          `json:"role"`
	Shape  string          `json:"shape,omitempty"`
	Object models.ObjectID `json:"object,omitempty"`
}

const (
	RoleMenuButton   = "menu_button"
	RoleDeleteButton = "delete_button"
	RoleInteractable = "interactable"
)

// Validate checks that the fields Type needs are present.
func (c Command) Validate() error {
	switch c.Type {
	case CommandPose:
		if c.Source == "" || c.Position == nil {
			return fmt.Errorf("%w: pose needs source and position", ErrMissingField)
		}
	case CommandPress:
		if c.Source == "" || c.Target == nil {
			return fmt.Errorf("%w: press needs source and target", ErrMissingField)
		}
	case CommandRelease, CommandHover:
		if c.Source == "" {
			return fmt.Errorf("%w: %s needs source", ErrMissingField, c.Type)
		}
	case CommandSpawn:
		if c.Shape == "" {
			return fmt.Errorf("%w: spawn needs shape", ErrMissingField)
		}
	case CommandDelete:
		if c.Object == 0 {
			return fmt.Errorf("%w: delete needs object", ErrMissingField)
		}
	case CommandToggleDeleteMode, CommandClearAll:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return nil
}

// Pose converts the position and orientation fields.
func (c Command) Pose() models.Pose {
	pose := models.NewPose(c.Vec3())
	if c.Orientation != nil {
		o := *c.Orientation
		pose.Orientation = mgl64.Quat{W: o[3], V: mgl64.Vec3{o[0], o[1], o[2]}}
	}
	return pose
}

// Vec3 returns Position, or the origin when absent.
func (c Command) Vec3() mgl64.Vec3 {
	if c.Position == nil {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3(*c.Position)
}

// InputEvent converts press, release and hover commands.
func (c Command) InputEvent() (models.InputEvent, error) {
	var ev models.InputEvent
	switch c.Type {
	case CommandPress:
		ev.Kind = models.InputPress
	case CommandRelease:
		ev.Kind = models.InputRelease
		return ev, nil
	case CommandHover:
		ev.Kind = models.InputHover
	default:
		return ev, fmt.Errorf("%w: %q is not an input event", ErrInvalidMessage, c.Type)
	}
	if c.Target == nil {
		return ev, nil
	}
	target, err := c.Target.Model()
	if err != nil {
		return ev, err
	}
	ev.Target = target
	return ev, nil
}

// Model converts the wire target.
func (t Target) Model() (models.Target, error) {
	switch t.Role {
	case RoleMenuButton:
		shape, err := models.ParseShapeKind(t.Shape)
		if err != nil {
			return models.Target{}, err
		}
		return models.MenuButton(shape), nil
	case RoleDeleteButton:
		return models.DeleteButton(), nil
	case RoleInteractable:
		return models.Interactable(t.Object), nil
	case "":
		return models.Target{}, nil
	default:
		return models.Target{}, fmt.Errorf("%w: %q", ErrUnknownRole, t.Role)
	}
}

// MessageType names an outbound message.
type MessageType string

const (
	MessageWelcome MessageType = "welcome"
	MessageState   MessageType = "state"
	MessageNotice  MessageType = "notice"
	MessageHaptic  MessageType = "haptic"
	MessageError   MessageType = "error"
)

// Message is one outbound message to a client.
type Message struct {
	Type       MessageType     `json:"type"`
	ClientID   string          `json:"client_id,omitempty"`
	State      *room.State     `json:"state,omitempty"`
	Text       string          `json:"text,omitempty"`
	Source     models.SourceID `json:"source,omitempty"`
	Intensity  float64         `json:"intensity,omitempty"`
	DurationMS int64           `json:"duration_ms,omitempty"`
}
