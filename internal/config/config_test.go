package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/observability/log"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "full file",
			createFile: true,
			content: `room:
  max_objects: 100
  floor_height: 0.5
  scale_min: 0.2
  scale_max: 2.5
  spawn_jitter: 0
  removal_delay: 250ms
  sources: [left, right]
server:
  listen_addr: "0.0.0.0:9000"
  tick_rate: 30
  auth_token: "secret"
logging:
  level: debug
  file: room.log
`,
			validate: func(t *testing.T, cfg *Config, err error) {
				assert.Equal(t, 100, cfg.Room.MaxObjects)
				assert.Equal(t, 0.5, cfg.Room.FloorHeight)
				assert.Equal(t, 250*time.Millisecond, cfg.Room.RemovalDelay)
				assert.Equal(t, []models.SourceID{models.SourceLeft, models.SourceRight}, cfg.Room.Sources)
				assert.Equal(t, "0.0.0.0:9000", cfg.Server.ListenAddr)
				assert.Equal(t, "secret", cfg.Server.AuthToken)
				assert.Equal(t, time.Second/30, cfg.Server.TickInterval())
				assert.Equal(t, log.LevelDebug, cfg.Logging.LogOptions().Level)
				assert.Equal(t, "room.log", cfg.Logging.LogOptions().File)
			},
		},
		{
			name:       "partial file keeps defaults",
			createFile: true,
			content:    "room:\n  max_objects: 40\n",
			validate: func(t *testing.T, cfg *Config, err error) {
				assert.Equal(t, 40, cfg.Room.MaxObjects)
				assert.Equal(t, 3.0, cfg.Room.ScaleMax)
				assert.Equal(t, 60, cfg.Server.TickRate)
				assert.Len(t, cfg.Room.Sources, 3)
			},
		},
		{
			name:    "missing file",
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				assert.True(t, os.IsNotExist(err), "got %v", err)
			},
		},
		{
			name:       "broken yaml",
			createFile: true,
			content:    "room: [",
			wantErr:    true,
		},
		{
			name:       "invalid values",
			createFile: true,
			content:    "room:\n  scale_min: 2\n  scale_max: 1\n",
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			},
		},
		{
			name:       "duplicate source",
			createFile: true,
			content:    "room:\n  sources: [left, left]\n",
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "room.yaml")
			if tt.createFile {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
