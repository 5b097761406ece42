// Command corduroyd runs the background poll daemon.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"corduroy/internal/config"
	"corduroy/internal/daemon"
	"corduroy/internal/logging"
	"corduroy/internal/poller"
	"corduroy/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open cycle store", logging.Error(err))
		return
	}

	pm, err := poller.NewManager(cfg, st, logger)
	if err != nil {
		logger.Error("create poller", logging.Error(err))
		_ = st.Close()
		return
	}

	d, err := daemon.New(cfg, st, logger, pm)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("corduroyd shutting down")
}
