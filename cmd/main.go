package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"xfid/config"
	"xfid/logger"
	"xfid/output"
	"xfid/runner"
	"xfid/systeminfo"
	"xfid/tracing"
	"xfid/update"
	"xfid/version"
)

func main() {
	if err := tracing.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start trace: %v\n", err)
	} else {
		defer tracing.Stop()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	if latest, notes, newer, err := update.CheckForUpdate(version.Version); err == nil && newer {
		if strings.Contains(strings.ToLower(notes), "security") {
			logger.Warnf("Update available: %s -> %s (security fixes included)", version.Version, latest)
		} else {
			logger.Infof("Update available: %s -> %s", version.Version, latest)
		}
	}

	sysInfo := systeminfo.Collect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	runOnce := func(ctx context.Context) error {
		metrics := output.Metrics{StartTime: time.Now().Format(time.RFC3339)}
		writer, err := output.New(cfg, sysInfo, &metrics)
		if err != nil {
			return err
		}
		defer writer.Close()
		if err := runner.Run(ctx, cfg, &metrics, writer); err != nil {
			return err
		}
		metrics.EndTime = time.Now().Format(time.RFC3339)
		writer.SetMetrics(metrics)
		return nil
	}

	if err := runOnce(ctx); err != nil {
		logger.Fatalf("Analysis failed: %v", err)
	}

	if cfg.Watch {
		logger.Infof("Watching %s for changes", strings.Join(cfg.StartPaths, ", "))
		if err := runner.Watch(ctx, cfg, runOnce); err != nil {
			logger.Fatalf("Watch failed: %v", err)
		}
	}

	logger.Info("Analysis completed successfully.")
}

func handleSignals(cancelFunc context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	handleSignalEvent(cancelFunc, sigChan)
}

func handleSignalEvent(cancelFunc context.CancelFunc, sigChan <-chan os.Signal) {
	<-sigChan
	logger.Info("Interrupt signal received. Shutting down...")
	cancelFunc()
}
