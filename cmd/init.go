package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/countygis/parcels/pkg/config"
	"github.com/urfave/cli/v3"
)

// InitCommand creates the init command
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Write every resolved setting without the template comments",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return initConfig(c.String("config"), c.Bool("force"), c.Bool("plain"))
		},
	}
}

// initConfig initializes the configuration file
func initConfig(configPath string, force, plain bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", configPath)
	}

	cfg, err := config.GetDefaultConfig()
	if err != nil {
		return err
	}
	save := cfg.SaveTemplateConfig
	if plain {
		save = cfg.SaveConfig
	}
	if err := save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration initialized at %s\n", configPath)
	return nil
}
