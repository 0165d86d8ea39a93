package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sqlt/paperflix/manifest"
	"github.com/go-sqlt/paperflix/plot"
	"github.com/spf13/cobra"
)

var figureCmd = &cobra.Command{
	Use:   "figure",
	Short: "Render a single figure from flags",
	Long: `Render a single figure without a manifest.

Examples:
  paperflix figure --kind errorbar --input throughput_log.csv --x length \
    --y total_samples --group lev_dist --bin 2 --iqr 50.5 --log-y -o throughput.tex
  paperflix figure --kind bar --format precision --input repair.txt --x-scale 0.001 -o repair.html
  go test -bench . | paperflix figure --format bench --x n --y ms_per_op --group k -o timings.tex
  paperflix figure --kind sankey --flow Total=2211 --flow Top-1=-677:1 --flow NR=-716:-1 -o sankey.tex`,
	RunE: runFigure,
}

// Flags
var (
	fig    manifest.Figure
	flows  []string
	inline bool
)

func init() {
	rootCmd.AddCommand(figureCmd)

	f := figureCmd.Flags()

	f.StringVarP(&fig.Kind, "kind", "k", "scatter", "Figure kind: bar, scatter, errorbar, cumulative, sankey")
	f.StringVarP(&fig.Output, "output", "o", "", "Output path; .html and .png select the echarts renderer")
	f.StringVar(&fig.Format, "output-format", "", "Output format: tikz, html, png")
	f.StringVar(&fig.Source.Format, "format", "", "Input format: csv, bench, precision, ratio, store")
	f.StringVarP(&fig.Source.Path, "input", "i", "", "Input file")
	f.BoolVar(&inline, "stdin", false, "Read the input from stdin (the default without --input)")
	f.StringVar(&fig.Source.X, "x", "", "X column")
	f.StringVar(&fig.Source.Y, "y", "", "Y column")
	f.StringVar(&fig.Source.Group, "group", "", "Group column")
	f.StringVar(&fig.Source.Figure, "store-figure", "", "Figure name in the store")
	f.StringSliceVar(&fig.Source.Groups, "store-groups", nil, "Series to load from the store")
	f.Uint64Var(&fig.Source.Limit, "store-limit", 0, "Maximum rows to load from the store")
	f.Float64Var(&fig.Bin, "bin", 0, "Bin width for X")
	f.Float64Var(&fig.IQR, "iqr", 0, "IQR multiplier for outlier removal, 0 keeps everything")
	f.Float64Var(&fig.Confidence, "confidence", 0.95, "Confidence level of the intervals")
	f.Float64Var(&fig.Bucket, "bucket", 1, "Bucket width of cumulative figures")
	f.StringVar(&fig.Transform, "transform", "", "Y transform: relative, log, log2, log10")
	f.Float64Var(&fig.XScale, "x-scale", 0, "Multiply X labels by this factor")
	f.BoolVar(&fig.LogY, "log-y", false, "Logarithmic Y axis")
	f.StringVar(&fig.Title, "title", "", "Title")
	f.StringVar(&fig.XLabel, "xlabel", "", "X axis label")
	f.StringVar(&fig.YLabel, "ylabel", "", "Y axis label")
	f.StringVar(&fig.Caption, "caption", "", "Caption; wraps the picture in a figure environment")
	f.StringVar(&fig.Label, "label", "", "LaTeX label")
	f.StringVar(&fig.Width, "width", "", "Axis width")
	f.StringVar(&fig.Height, "height", "", "Axis height")
	f.StringArrayVar(&flows, "flow", nil, "Sankey flow as label=value[:orientation], inflow first")

	_ = figureCmd.MarkFlagRequired("output")
}

func runFigure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f := fig

	if inline || readsStdin(f, flows) {
		data, err := readAll(cmd)
		if err != nil {
			return err
		}

		f.Source.Inline = data
	}

	for _, s := range flows {
		flow, err := parseFlow(s)
		if err != nil {
			return err
		}

		f.Flows = append(f.Flows, flow)
	}

	f.Defaults()

	if err := f.Validate(); err != nil {
		return err
	}

	repo, closeRepo, err := repositoryFor(ctx, []manifest.Figure{f})
	if err != nil {
		return err
	}

	defer closeRepo()

	return plot.Render(ctx, f, plot.Options{
		Repository: repo,
		Logger:     log,
	})
}

// readsStdin reports whether a figure has no other input than stdin.
func readsStdin(f manifest.Figure, flows []string) bool {
	return f.Source.Path == "" && len(flows) == 0 && f.Source.Format != "store" && f.Kind != "sankey"
}

// parseFlow reads label=value[:orientation].
func parseFlow(s string) (manifest.Flow, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return manifest.Flow{}, fmt.Errorf("flow %q: want label=value[:orientation]", s)
	}

	flow := manifest.Flow{Label: s[:i]}

	value, orientation, ok := strings.Cut(s[i+1:], ":")

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return flow, fmt.Errorf("flow %q: %w", s, err)
	}

	flow.Value = v

	if ok {
		if flow.Orientation, err = strconv.Atoi(orientation); err != nil {
			return flow, fmt.Errorf("flow %q: %w", s, err)
		}
	}

	return flow, nil
}
