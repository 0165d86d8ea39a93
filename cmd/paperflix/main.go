package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paperflix",
	Short: "Statistics and figures for experiment logs",
	Long: `paperflix turns experiment logs into paper figures.

It reads CSV logs, go benchmark output, precision listings and ratio
listings, or measurements kept in PostgreSQL, filters outliers, computes
confidence intervals and writes pgfplots/TikZ, HTML or PNG figures.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

// Flags
var (
	verbose bool
	store   string
	dsn     string
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&store, "store", "pgx", "Measurement store: sql, pgx, squirrel, sqlx, gorm, sqlt")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("PAPERFLIX_DSN"), "PostgreSQL connection string (default $PAPERFLIX_DSN)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
