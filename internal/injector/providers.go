package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/objectroom/internal/config"
	"github.com/zeusync/objectroom/internal/core/events/bus"
	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/core/room"
	"github.com/zeusync/objectroom/internal/core/scene"
	"github.com/zeusync/objectroom/internal/server"
)

// ProviderSet builds a server from a loaded *config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideScene,
	ProvideRoomOptions,
	ProvideServerConfig,
	room.New,
	server.NewServer,
)

// ProvideLogger returns the configured logger and a cleanup that flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func()) {
	logger := log.NewWithOptions(cfg.Logging.LogOptions())
	return logger, func() { _ = logger.Sync() }
}

func ProvideScene() scene.Scene {
	return scene.NewMemory()
}

func ProvideRoomOptions(cfg *config.Config) room.Options {
	return room.OptionsFromConfig(cfg.Room)
}

func ProvideServerConfig(cfg *config.Config) config.ServerConfig {
	return cfg.Server
}
