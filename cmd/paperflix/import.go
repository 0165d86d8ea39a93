package main

import (
	"bytes"
	"fmt"

	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/paperflix/manifest"
	"github.com/go-sqlt/paperflix/pgxflix"
	"github.com/go-sqlt/paperflix/plot"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <figure> [input]",
	Short: "Load measurements into the store",
	Long: `Parse a log and copy its measurements into the measurements table under
the given figure name. Reads stdin without an input file. The table is
created when missing.

Examples:
  paperflix import throughput throughput_log.csv --x length --y total_samples --group lev_dist
  go test -bench . | paperflix import timings --format bench --x n --y ms_per_op --group k --replace`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runImport,
}

// Flags
var (
	importSource  manifest.Source
	importReplace bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	f := importCmd.Flags()

	f.StringVar(&importSource.Format, "format", "csv", "Input format: csv, bench, precision, ratio")
	f.StringVar(&importSource.X, "x", "", "X column")
	f.StringVar(&importSource.Y, "y", "", "Y column")
	f.StringVar(&importSource.Group, "group", "", "Group column")
	f.BoolVar(&importReplace, "replace", false, "Delete the figure's measurements first")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src := importSource

	if src.Format == "store" {
		return fmt.Errorf("cannot import from the store")
	}

	if len(args) == 2 {
		src.Path = args[1]
	} else {
		data, err := readAll(cmd)
		if err != nil {
			return err
		}

		src.Inline = data
	}

	f := manifest.Figure{Kind: "scatter", Source: src}
	f.Defaults()

	if f.Source.X == "" {
		return errMissingFlag("x")
	}

	if f.Source.Y == "" {
		return errMissingFlag("y")
	}

	ms, err := plot.Load(ctx, f.Source, "", nil)
	if err != nil {
		return err
	}

	pool, err := openPool(ctx)
	if err != nil {
		return err
	}

	defer pool.Close()

	if err = paperflix.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo := pgxflix.Repository{Pool: pool}

	if importReplace {
		deleted, err := repo.DeleteMeasurements(ctx, args[0])
		if err != nil {
			return err
		}

		log.Info("deleted measurements", "figure", args[0], "rows", deleted)
	}

	n, err := repo.InsertMeasurements(ctx, args[0], ms)
	if err != nil {
		return err
	}

	log.Info("imported measurements", "figure", args[0], "rows", n)

	return nil
}

func readAll(cmd *cobra.Command) (string, error) {
	var sb bytes.Buffer

	if _, err := sb.ReadFrom(cmd.InOrStdin()); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func errMissingFlag(name string) error {
	return fmt.Errorf("missing --%s", name)
}
