package cmd

import (
	"errors"
	"fmt"

	"github.com/countygis/parcels/pkg/config"
	"github.com/countygis/parcels/pkg/log"
	"github.com/countygis/parcels/pkg/search"
	"github.com/countygis/parcels/pkg/snapshot"
	"github.com/urfave/cli/v3"
)

var logger = log.ForService("cli")

// loadConfig reads the file named by the global --config flag and applies
// its debug settings on top of --debug.
func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log.Configure(c.Bool("debug"), cfg.DebugServices)
	return cfg, nil
}

// openService loads the configured snapshot for one-shot commands. Unlike
// serve, a missing snapshot is an error here.
func openService(cfg *config.Config) (*search.SearchService, error) {
	service := search.NewSearchService(cfg.SearchOptions())
	if err := service.Load(); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, fmt.Errorf("no snapshot at %s, run 'parcels generate' first", cfg.SnapshotPath)
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return service, nil
}
