package main

import (
	"os"

	"github.com/go-sqlt/paperflix/manifest"
	"github.com/go-sqlt/paperflix/plot"
	"github.com/go-sqlt/paperflix/summary"
	"github.com/go-sqlt/paperflix/tikzflix"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [input]",
	Short: "Write a LaTeX table of per group statistics",
	Long: `Summarize the Y column per group: kept sample size, mean, confidence
interval and IQR after outlier removal. Reads stdin without an input file.

Examples:
  paperflix summarize throughput_log.csv --y total_samples --group lev_dist --iqr 50.5
  go test -bench . | paperflix summarize --format bench --y ms_per_op --group k`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

// Flags
var (
	summarizeSource     manifest.Source
	summarizeIQR        float64
	summarizeConfidence float64
	summarizeCaption    string
	summarizeLabel      string
)

func init() {
	rootCmd.AddCommand(summarizeCmd)

	f := summarizeCmd.Flags()

	f.StringVar(&summarizeSource.Format, "format", "csv", "Input format: csv, bench, precision, ratio, store")
	f.StringVar(&summarizeSource.Y, "y", "", "Value column")
	f.StringVar(&summarizeSource.Group, "group", "", "Group column")
	f.StringVar(&summarizeSource.Figure, "store-figure", "", "Figure name in the store")
	f.Float64Var(&summarizeIQR, "iqr", 0, "IQR multiplier for outlier removal, 0 keeps everything")
	f.Float64Var(&summarizeConfidence, "confidence", 0.95, "Confidence level of the intervals")
	f.StringVar(&summarizeCaption, "caption", "", "Table caption")
	f.StringVar(&summarizeLabel, "label", "", "Table label")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src := summarizeSource

	switch {
	case len(args) == 1:
		src.Path = args[0]
	case src.Format != "store":
		data, err := readAll(cmd)
		if err != nil {
			return err
		}

		src.Inline = data
	}

	f := manifest.Figure{Kind: "bar", Source: src}
	f.Defaults()

	if f.Source.Y == "" {
		return errMissingFlag("y")
	}

	repo, closeRepo, err := repositoryFor(ctx, []manifest.Figure{f})
	if err != nil {
		return err
	}

	defer closeRepo()

	ms, err := plot.Load(ctx, f.Source, "", repo)
	if err != nil {
		return err
	}

	var summaries []summary.Summary

	for _, g := range summary.GroupBy(ms, summary.ByGroup) {
		s, err := summary.Summarize(g.Key, g.Ys(), summarizeIQR, summarizeConfidence)
		if err != nil {
			return err
		}

		log.Debug("summarized", "group", g.Key, "n", s.N, "outliers", s.Outliers)

		summaries = append(summaries, s)
	}

	return tikzflix.Table(os.Stdout, summarizeCaption, summarizeLabel, summaries)
}
