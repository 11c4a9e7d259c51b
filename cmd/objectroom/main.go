package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/objectroom/internal/config"
	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults are used when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger := log.Provide()
		logger.Error("Object room stopped", log.String("config", *configPath), log.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	srv, cleanup, err := injector.InitializeServer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
