package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/countygis/parcels/pkg/api"
	"github.com/countygis/parcels/pkg/config"
	"github.com/countygis/parcels/pkg/generate"
	"github.com/countygis/parcels/pkg/realtime"
	"github.com/countygis/parcels/pkg/search"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not reload when the snapshot file changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if listen := c.String("listen"); listen != "" {
				cfg.Listen = listen
			}
			if c.Bool("no-watch") {
				cfg.Watch = false
			}
			return serve(ctx, cfg)
		},
	}
}

// serve loads the snapshot and runs the HTTP API until SIGINT or SIGTERM.
// SIGHUP and snapshot file changes reload the dataset.
func serve(ctx context.Context, cfg *config.Config) error {
	service := search.NewSearchService(cfg.SearchOptions())
	// A missing or broken snapshot is logged by Load; serve an empty dataset
	_ = service.Load()

	hub := realtime.NewHub(32)
	service.OnReload(func(e search.ReloadEvent) {
		hub.Broadcast(realtime.DatasetEvent{
			Generation:   e.Generation,
			TotalEntries: e.TotalEntries,
			Skipped:      e.Skipped,
			LoadedAt:     e.LoadedAt,
		})
	})

	var generator api.Generator
	if cfg.Generator.SourceDir != "" {
		generator = generate.New(cfg.GeneratorOptions())
	}

	server := api.NewServer(service, generator, hub)
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reload := func(reason string) {
		n, err := service.Reload(serveCtx)
		if err != nil {
			logger.Errorf("reload after %s failed: %v", reason, err)
			return
		}
		logger.Infof("reloaded %d entries after %s", n, reason)
	}

	if cfg.Watch {
		w, err := newSnapshotWatcher(cfg.SnapshotPath)
		if err != nil {
			logger.Warnf("snapshot changes will not be picked up: %v", err)
		} else {
			logger.Infof("watching %s for changes", cfg.SnapshotPath)
			go w.run(serveCtx, cfg.WatchDebounce.Duration, func() { reload("snapshot change") })
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://%s (%d entries loaded)", cfg.Listen, service.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Infof("received SIGHUP, reloading snapshot")
				reload("SIGHUP")
			case syscall.SIGINT, syscall.SIGTERM:
				return shutdown(httpServer, cancel)
			}
		case <-ctx.Done():
			return shutdown(httpServer, cancel)
		case err := <-serverErr:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

func shutdown(httpServer *http.Server, cancel context.CancelFunc) error {
	logger.Infof("shutting down")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
	defer done()
	return httpServer.Shutdown(shutdownCtx)
}
