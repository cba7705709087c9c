package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/disktempd/internal/cache"
	"codeberg.org/mutker/disktempd/internal/config"
	"codeberg.org/mutker/disktempd/internal/daemon"
	"codeberg.org/mutker/disktempd/internal/device"
	"codeberg.org/mutker/disktempd/internal/direct"
	"codeberg.org/mutker/disktempd/internal/logger"
	"codeberg.org/mutker/disktempd/internal/pid"
	"codeberg.org/mutker/disktempd/internal/smartctl"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "disktempd: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "disktempd: %v\n", err)
		return 1
	}
	logger.Debug().Msg("Config loaded")

	devices := device.ParseAll(cfg.Devices)
	reader := smartctl.NewReader(
		device.Unit(cfg.Unit),
		cfg.WakeUp,
		time.Duration(cfg.ReadTimeout)*time.Second,
	)

	if !cfg.Daemon {
		runner := direct.New(reader, direct.Config{
			Numeric: cfg.Numeric,
			Quiet:   cfg.Quiet,
		}, os.Stdout, os.Stderr)

		return runner.Run(context.Background(), devices)
	}

	return runDaemon(cfg, reader, devices)
}

func runDaemon(cfg *config.Config, reader device.Reader, devices []device.Spec) int {
	if err := pid.Write(); err != nil {
		logger.Error().Err(err).Msg("Failed to write PID file")
		return 1
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	pollCache := cache.New(reader, devices, time.Duration(cfg.PollInterval)*time.Second)

	server := daemon.New(daemon.Config{
		Listen:    cfg.Listen,
		Port:      cfg.Port,
		Network:   cfg.Network(),
		Separator: cfg.Separator,
	}, pollCache)

	// Bind before the first fill so a bad address fails fast, but do not
	// serve until the cache is populated: no client ever sees an empty
	// snapshot.
	if err := server.Listen(); err != nil {
		logger.Error().Err(err).Msg("Failed to start daemon")
		return 1
	}

	pollCache.Refresh(ctx)
	go pollCache.Run(ctx)

	if err := server.Serve(ctx); err != nil {
		logger.Error().Err(err).Msg("Daemon terminated with error")
		return 1
	}

	logger.Info().Msg("Exiting...")

	return 0
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
