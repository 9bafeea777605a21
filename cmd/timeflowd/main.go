// Command timeflowd is the TimeFlow server daemon. It opens the task
// store, wires the application core, and serves the REST API, SSE event
// stream, and day-view shell from the YAML config file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/timeflowapp/timeflow/app"
	"github.com/timeflowapp/timeflow/broadcast"
	"github.com/timeflowapp/timeflow/comms"
	"github.com/timeflowapp/timeflow/config"
	"github.com/timeflowapp/timeflow/internal/version"
	"github.com/timeflowapp/timeflow/notify"
	"github.com/timeflowapp/timeflow/server"
	"github.com/timeflowapp/timeflow/task"
)

var configPath = flag.String("config", "timeflow.yaml", "path to config file")

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	logger.Info("starting timeflowd",
		"version", version.Version,
		"commit", version.Commit,
	)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir %s: %v", cfg.DataDir, err)
	}

	store, err := task.NewSQLiteStore(filepath.Join(cfg.DataDir, "timeflow.db"))
	if err != nil {
		log.Fatalf("Failed to open task store: %v", err)
	}
	defer store.Close()

	bus := comms.NewInMemoryBus()

	channel, err := openChannel(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open sync channel: %v", err)
	}
	defer channel.Close()

	notifier := notify.MultiNotifier{notify.BusNotifier{Bus: bus}}
	if cfg.Notify.Desktop {
		notifier = append(notifier, notify.CommandNotifier{Logger: logger})
	}

	core := app.New(store, bus, channel, notifier, logger, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := core.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	go core.Scheduler().Run(ctx, cfg.Notify.CheckInterval.Std())

	srv := server.New(*cfg, version.Version, logger)
	srv.SetStore(store)
	srv.SetPlanner(core)
	srv.SetBus(bus)
	if cfg.Server.StaticDir != "" {
		srv.SetStaticFS(os.DirFS(cfg.Server.StaticDir))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Printf("TimeFlow server running on http://localhost%s\n", cfg.Server.Addr)
	fmt.Printf("Version: %s (%s)\n", version.Version, version.Commit)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case <-sigCh:
	}

	fmt.Println("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server stop error", "error", err)
	}
	fmt.Println("Shutdown complete")
}

// loadConfig falls back to defaults when the default config file is
// absent; an explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(errors.Unwrap(err)) && path == "timeflow.yaml" {
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func openChannel(cfg *config.Config, logger *slog.Logger) (broadcast.Channel, error) {
	if cfg.Sync.Journal == "" {
		return broadcast.NewMemoryChannel(), nil
	}
	return broadcast.NewFileChannel(cfg.Sync.Journal, cfg.Sync.PollInterval.Std(), logger)
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
