package models

// Role tags what an input event is aimed at.
type Role uint8

const (
	RoleNone Role = iota
	RoleMenuButton
	RoleDeleteButton
	RoleInteractable
)

func (r Role) String() string {
	switch r {
	case RoleMenuButton:
		return "menu-button"
	case RoleDeleteButton:
		return "delete-button"
	case RoleInteractable:
		return "interactable"
	default:
		return "none"
	}
}

// Target is whatever the external ray intersection reported under a source.
// Only the payload matching Role is meaningful.
type Target struct {
	Role   Role
	Shape  ShapeKind // RoleMenuButton
	Object ObjectID  // RoleInteractable
}

// MenuButton targets the spawn button for shape.
func MenuButton(shape ShapeKind) Target {
	return Target{Role: RoleMenuButton, Shape: shape}
}

// DeleteButton targets the delete mode toggle.
func DeleteButton() Target {
	return Target{Role: RoleDeleteButton}
}

// Interactable targets a spawned object.
func Interactable(id ObjectID) Target {
	return Target{Role: RoleInteractable, Object: id}
}

// InputKind is the kind of discrete input event.
type InputKind uint8

const (
	InputPress InputKind = iota
	InputRelease
	InputHover
)

// InputEvent is one trigger, pinch, click or hover transition from a source.
type InputEvent struct {
	Kind   InputKind
	Target Target
}
