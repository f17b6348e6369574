package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/countygis/parcels/pkg/record"
	"github.com/countygis/parcels/pkg/search"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search parcels by owner, parcel id or address",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query (alternative to positional arguments)",
			},
			&cli.StringSliceFlag{
				Name:  "county",
				Usage: "Restrict results to a county label or code (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "field",
				Usage: "Scope matching to a field: owner, pidn, mailing_address, physical_address, county",
			},
			&cli.StringFlag{
				Name:  "near",
				Usage: "Prefer parcels near lat,lon",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "scores",
				Usage: "Show match scores",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			params, err := searchParamsFromFlags(c)
			if err != nil {
				return err
			}
			if strings.TrimSpace(params.Query) == "" {
				return fmt.Errorf("a search query is required")
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			service, err := openService(cfg)
			if err != nil {
				return err
			}

			results, err := service.Search(params)
			if err != nil {
				return fmt.Errorf("searching: %w", err)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results.Hits)
			}
			fmt.Print(formatResults(results, c.Bool("scores")))
			return nil
		},
	}
}

func searchParamsFromFlags(c *cli.Command) (search.SearchParams, error) {
	params := search.SearchParams{
		Query:    c.String("query"),
		Counties: c.StringSlice("county"),
		Limit:    c.Int("limit"),
	}
	if params.Query == "" {
		params.Query = strings.Join(c.Args().Slice(), " ")
	}

	for _, name := range c.StringSlice("field") {
		f, err := record.ParseField(strings.TrimSpace(name))
		if err != nil {
			return params, err
		}
		params.Fields = append(params.Fields, f)
	}

	if near := c.String("near"); near != "" {
		p, err := search.ParsePoint(near)
		if err != nil {
			return params, err
		}
		params.Near = &p
	}
	return params, nil
}
