package cmd

import (
	"context"
	"fmt"

	"github.com/countygis/parcels/pkg/snapshot"
	"github.com/urfave/cli/v3"
)

// ConvertCommand creates the convert command
func ConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Re-encode a snapshot, e.g. JSON to zstd or SQLite",
		ArgsUsage: "<input> <output>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected <input> and <output>")
			}
			return convertSnapshot(c.Args().Get(0), c.Args().Get(1))
		},
	}
}

func convertSnapshot(input, output string) error {
	snap, err := snapshot.Read(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	if err := snapshot.Write(output, snap.Records); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Printf("Converted %d records from %s (%s) to %s (%s)\n",
		len(snap.Records), input, snap.Format, output, snapshot.FormatFor(output))
	if snap.Skipped > 0 {
		fmt.Printf("Skipped %d malformed records\n", snap.Skipped)
	}
	return nil
}
