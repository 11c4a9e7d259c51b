package protocol

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/objectroom/internal/core/models"
)

func TestDecodeCommand(t *testing.T) {
	codec := JSONCodec{}

	tests := []struct {
		name    string
		input   string
		wantErr error
		check   func(t *testing.T, cmd Command)
	}{
		{
			name:  "pose",
			input: `{"type":"pose","source":"left","position":[1,2,3],"orientation":[0,0.7071068,0,0.7071068]}`,
			check: func(t *testing.T, cmd Command) {
				pose := cmd.Pose()
				assert.Equal(t, mgl64.Vec3{1, 2, 3}, pose.Position)
				assert.InDelta(t, 0.7071068, pose.Orientation.W, 1e-9)
				assert.InDelta(t, 0.7071068, pose.Orientation.V.Y(), 1e-9)
			},
		},
		{
			name:  "press menu button",
			input: `{"type":"press","source":"mouse","target":{"role":"menu_button","shape":"icosahedron"}}`,
			check: func(t *testing.T, cmd Command) {
				ev, err := cmd.InputEvent()
				require.NoError(t, err)
				assert.Equal(t, models.InputPress, ev.Kind)
				assert.Equal(t, models.MenuButton(models.ShapeIcosahedron), ev.Target)
			},
		},
		{
			name:  "hover nothing",
			input: `{"type":"hover","source":"right"}`,
			check: func(t *testing.T, cmd Command) {
				ev, err := cmd.InputEvent()
				require.NoError(t, err)
				assert.Equal(t, models.RoleNone, ev.Target.Role)
			},
		},
		{
			name:  "spawn",
			input: `{"type":"spawn","shape":"cone","position":[0,1,-1]}`,
			check: func(t *testing.T, cmd Command) {
				assert.Equal(t, mgl64.Vec3{0, 1, -1}, cmd.Vec3())
			},
		},
		{name: "toggle", input: `{"type":"toggle_delete_mode"}`},
		{name: "garbage", input: `{"type":`, wantErr: ErrInvalidMessage},
		{name: "unknown type", input: `{"type":"teleport"}`, wantErr: ErrUnknownCommand},
		{name: "pose without position", input: `{"type":"pose","source":"left"}`, wantErr: ErrMissingField},
		{name: "delete without object", input: `{"type":"delete"}`, wantErr: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := codec.DecodeCommand([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cmd)
			}
		})
	}
}

func TestTargetModel(t *testing.T) {
	_, err := Target{Role: "door"}.Model()
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = Target{Role: RoleMenuButton, Shape: "blob"}.Model()
	assert.Error(t, err)

	got, err := Target{Role: RoleInteractable, Object: 4}.Model()
	require.NoError(t, err)
	assert.Equal(t, models.Interactable(4), got)
}

func TestEncodeCommandValidates(t *testing.T) {
	_, err := JSONCodec{}.EncodeCommand(Command{Type: CommandPress, Source: models.SourceLeft})
	assert.ErrorIs(t, err, ErrMissingField)
}
