package plot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/paperflix/echartsflix"
	"github.com/go-sqlt/paperflix/figure"
	"github.com/go-sqlt/paperflix/manifest"
	"github.com/go-sqlt/paperflix/tikzflix"
	"golang.org/x/sync/errgroup"
)

var ErrNoRepository = errors.New("store source without a repository")

type Options struct {
	Dir        string
	Repository paperflix.Repository
	Logger     *slog.Logger
	Jobs       int
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return o.Logger
}

func Read(format string, r io.Reader) (paperflix.Table, error) {
	switch format {
	case "", "csv":
		return paperflix.ReadCSV(r)
	case "bench":
		return paperflix.ReadBenchmarks(r)
	case "precision":
		return paperflix.ReadPrecision(r)
	case "ratio":
		return paperflix.ReadRatios(r)
	default:
		return paperflix.Table{}, fmt.Errorf("unknown source format %q", format)
	}
}

// Load returns the measurements a source points at.
func Load(ctx context.Context, src manifest.Source, dir string, repo paperflix.Repository) ([]paperflix.Measurement, error) {
	if src.Format == "store" {
		if repo == nil {
			return nil, ErrNoRepository
		}

		return repo.QueryMeasurements(ctx, paperflix.MeasurementParams{
			Figure: src.Figure,
			Groups: src.Groups,
			Limit:  src.Limit,
		})
	}

	var r io.Reader = strings.NewReader(src.Inline)

	if src.Inline == "" {
		file, err := os.Open(manifest.Resolve(dir, src.Path))
		if err != nil {
			return nil, err
		}

		defer file.Close()

		r = file
	}

	table, err := Read(src.Format, r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Path, err)
	}

	x := src.X
	if x == "" {
		x = src.Y
	}

	return table.Measurements(x, src.Y, src.Group)
}

func Build(ctx context.Context, f manifest.Figure, dir string, repo paperflix.Repository) (figure.Figure, error) {
	var (
		ms  []paperflix.Measurement
		err error
	)

	if figure.Kind(f.Kind) != figure.Sankey {
		if ms, err = Load(ctx, f.Source, dir, repo); err != nil {
			return figure.Figure{}, err
		}
	}

	fig, err := figure.New(figure.Kind(f.Kind), ms, f.FigureFlows(), f.Options())
	if err != nil {
		return figure.Figure{}, err
	}

	fig.Title = f.Title
	fig.XLabel = f.XLabel
	fig.YLabel = f.YLabel
	fig.Caption = f.Caption
	fig.Label = f.Label
	fig.Width = f.Width
	fig.Height = f.Height

	return fig, nil
}

func Write(path, format string, fig figure.Figure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	switch format {
	case manifest.FormatHTML:
		return echartsflix.WriteHTML(path, fig)
	case manifest.FormatPNG:
		return echartsflix.WritePNG(path, fig)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err = tikzflix.Render(file, fig); err != nil {
		_ = file.Close()

		return err
	}

	return file.Close()
}

func Render(ctx context.Context, f manifest.Figure, opts Options) error {
	log := opts.logger().With("figure", f.Name)

	fig, err := Build(ctx, f, opts.Dir, opts.Repository)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	if fig.Kind == figure.Sankey && fig.Residual != 0 {
		log.Warn("flows do not balance", "residual", fig.Residual)
	}

	output := manifest.Resolve(opts.Dir, f.Output)

	if err = Write(output, f.Format, fig); err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	log.Info("wrote figure", "output", output, "kind", fig.Kind, "series", len(fig.Series))

	return nil
}

// RenderAll renders independent figures concurrently, at most opts.Jobs at
// a time. The first failure cancels the figures not yet started.
func RenderAll(ctx context.Context, figures []manifest.Figure, opts Options) error {
	group, ctx := errgroup.WithContext(ctx)

	if opts.Jobs > 0 {
		group.SetLimit(opts.Jobs)
	}

	for _, f := range figures {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return Render(ctx, f, opts)
		})
	}

	return group.Wait()
}
