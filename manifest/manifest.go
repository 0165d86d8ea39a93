package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sqlt/paperflix/figure"
	"gopkg.in/yaml.v3"
)

const (
	FormatTikz = "tikz"
	FormatHTML = "html"
	FormatPNG  = "png"
)

var ErrInvalid = errors.New("invalid figure")

type Manifest struct {
	Dir     string   `yaml:"-"`
	Figures []Figure `yaml:"figures"`
}

// Source says where the measurements of a figure come from. Format is one
// of csv, bench, precision, ratio or store. Inline text replaces Path.
type Source struct {
	Format string   `yaml:"format"`
	Path   string   `yaml:"path"`
	Inline string   `yaml:"inline"`
	X      string   `yaml:"x"`
	Y      string   `yaml:"y"`
	Group  string   `yaml:"group"`
	Figure string   `yaml:"figure"`
	Groups []string `yaml:"groups"`
	Limit  uint64   `yaml:"limit"`
}

type Flow struct {
	Label       string  `yaml:"label"`
	Value       float64 `yaml:"value"`
	Orientation int     `yaml:"orientation"`
}

type Figure struct {
	Name       string  `yaml:"name"`
	Kind       string  `yaml:"kind"`
	Source     Source  `yaml:"source"`
	Bin        float64 `yaml:"bin"`
	IQR        float64 `yaml:"iqr"`
	Confidence float64 `yaml:"confidence"`
	Bucket     float64 `yaml:"bucket"`
	Transform  string  `yaml:"transform"`
	XScale     float64 `yaml:"x_scale"`
	LogY       bool    `yaml:"log_y"`
	Title      string  `yaml:"title"`
	XLabel     string  `yaml:"xlabel"`
	YLabel     string  `yaml:"ylabel"`
	Caption    string  `yaml:"caption"`
	Label      string  `yaml:"label"`
	Width      string  `yaml:"width"`
	Height     string  `yaml:"height"`
	Output     string  `yaml:"output"`
	Format     string  `yaml:"format"`
	Flows      []Flow  `yaml:"flows"`
}

func Load(path string) (Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Manifest{}, err
	}

	defer file.Close()

	return Parse(file, filepath.Dir(path))
}

// Parse decodes a manifest. Relative source and output paths are later
// resolved against dir.
func Parse(r io.Reader, dir string) (Manifest, error) {
	m := Manifest{Dir: dir}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}

	m.Dir = dir

	for i := range m.Figures {
		m.Figures[i].Defaults()

		if err := m.Figures[i].Validate(); err != nil {
			return m, err
		}
	}

	return m, nil
}

func (f *Figure) Defaults() {
	if f.Confidence == 0 {
		f.Confidence = 0.95
	}

	if f.Source.Format == "" && f.Kind != string(figure.Sankey) {
		f.Source.Format = "csv"
	}

	switch f.Source.Format {
	case "precision":
		f.Source.X = or(f.Source.X, "budget")
		f.Source.Y = or(f.Source.Y, "precision")
		f.Source.Group = or(f.Source.Group, "k")
	case "ratio":
		f.Source.X = or(f.Source.X, "lo")
		f.Source.Y = or(f.Source.Y, "ratio")
		f.Source.Group = or(f.Source.Group, "group")
	}

	if f.Format == "" {
		switch strings.ToLower(filepath.Ext(f.Output)) {
		case ".html", ".htm":
			f.Format = FormatHTML
		case ".png":
			f.Format = FormatPNG
		default:
			f.Format = FormatTikz
		}
	}

	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(f.Output), filepath.Ext(f.Output))
	}
}

func (f Figure) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalid, f.Name, fmt.Sprintf(format, args...))
	}

	if f.Output == "" {
		return invalid("output is required")
	}

	switch figure.Kind(f.Kind) {
	case figure.Sankey:
		if len(f.Flows) < 2 {
			return invalid("sankey needs at least two flows")
		}

	case figure.Bar, figure.Scatter, figure.ErrorBar, figure.Cumulative:
		if f.Source.Path == "" && f.Source.Inline == "" && f.Source.Format != "store" {
			return invalid("source path or inline data is required")
		}

		if f.Source.Format == "store" && f.Source.Figure == "" {
			return invalid("store source needs a figure name")
		}

		if f.Source.Format == "csv" || f.Source.Format == "bench" {
			if f.Source.Y == "" || (f.Source.X == "" && figure.Kind(f.Kind) != figure.Cumulative) {
				return invalid("%s source needs x and y columns", f.Source.Format)
			}
		}

	default:
		return invalid("unknown kind %q", f.Kind)
	}

	switch f.Source.Format {
	case "", "csv", "bench", "precision", "ratio", "store":
	default:
		return invalid("unknown source format %q", f.Source.Format)
	}

	switch f.Format {
	case FormatTikz, FormatHTML, FormatPNG:
	default:
		return invalid("unknown output format %q", f.Format)
	}

	if f.Confidence <= 0 || f.Confidence >= 1 {
		return invalid("confidence %g outside (0, 1)", f.Confidence)
	}

	return nil
}

func (f Figure) Options() figure.Options {
	return figure.Options{
		Bin:        f.Bin,
		IQR:        f.IQR,
		Confidence: f.Confidence,
		Bucket:     f.Bucket,
		Transform:  f.Transform,
		XScale:     f.XScale,
		LogY:       f.LogY,
	}
}

func (f Figure) FigureFlows() []figure.Flow {
	flows := make([]figure.Flow, len(f.Flows))

	for i, fl := range f.Flows {
		flows[i] = figure.Flow{Label: fl.Label, Value: fl.Value, Orientation: fl.Orientation}
	}

	return flows
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

// Resolve joins a relative path onto the manifest directory.
func Resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}

	return filepath.Join(dir, path)
}
