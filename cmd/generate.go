package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/countygis/parcels/pkg/generate"
	"github.com/urfave/cli/v3"
)

// GenerateCommand creates the generate command
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Build the search snapshot from county exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source-dir",
				Usage: "Directory holding the <county>_data_files exports (overrides config)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Snapshot to write, the extension selects the format (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "county",
				Usage: "County code to convert (repeatable, overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Counties converted in parallel (overrides config)",
			},
			&cli.StringFlag{
				Name:  "notify",
				Usage: "Base URL of a running server to reload after writing, e.g. http://localhost:8000",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			opts := cfg.GeneratorOptions()
			if dir := c.String("source-dir"); dir != "" {
				opts.SourceDir = dir
			}
			if out := c.String("output"); out != "" {
				opts.Output = out
			}
			if counties := c.StringSlice("county"); len(counties) > 0 {
				opts.Counties = counties
			}
			if workers := c.Int("workers"); workers > 0 {
				opts.Workers = workers
			}
			if opts.SourceDir == "" {
				return fmt.Errorf("no source directory, set generator.source_dir or pass --source-dir")
			}

			result, err := generate.New(opts).Run(ctx)
			if err != nil {
				return fmt.Errorf("generating snapshot: %w", err)
			}
			fmt.Print(formatGenerateResult(result))

			if url := c.String("notify"); url != "" {
				if err := notifyReload(ctx, url); err != nil {
					return err
				}
				fmt.Printf("Reload requested from %s\n", url)
			}
			return nil
		},
	}
}

// notifyReload asks a running server to pick up the new snapshot.
func notifyReload(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/internal/reload-search-index"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("creating reload request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting reload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("reload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
