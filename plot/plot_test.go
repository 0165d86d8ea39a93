package plot_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/paperflix/figure"
	"github.com/go-sqlt/paperflix/manifest"
	"github.com/go-sqlt/paperflix/plot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const throughput = `lev_dist,length,total_samples
1,10,100
1,11,110
1,13,130
2,10,200
2,12,220
`

type memory []paperflix.Measurement

func (m memory) QueryMeasurements(_ context.Context, params paperflix.MeasurementParams) ([]paperflix.Measurement, error) {
	var out []paperflix.Measurement

	for _, ms := range m {
		if len(params.Groups) > 0 && !contains(params.Groups, ms.Group) {
			continue
		}

		out = append(out, ms)
	}

	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

func TestLoadInline(t *testing.T) {
	ms, err := plot.Load(context.Background(), manifest.Source{
		Format: "csv",
		Inline: throughput,
		X:      "length",
		Y:      "total_samples",
		Group:  "lev_dist",
	}, "", nil)
	require.NoError(t, err)

	require.Len(t, ms, 5)
	assert.Equal(t, paperflix.Measurement{Group: "1", X: 10, Y: 100}, ms[0])
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.csv"), []byte(throughput), 0o644))

	ms, err := plot.Load(context.Background(), manifest.Source{
		Format: "csv",
		Path:   "log.csv",
		Y:      "total_samples",
	}, dir, nil)
	require.NoError(t, err)

	require.Len(t, ms, 5)
	assert.Equal(t, ms[0].Y, ms[0].X)
}

func TestLoadStore(t *testing.T) {
	repo := memory{{Group: "a", X: 1, Y: 2}, {Group: "b", X: 1, Y: 3}}

	ms, err := plot.Load(context.Background(), manifest.Source{
		Format: "store",
		Figure: "fig",
		Groups: []string{"b"},
	}, "", repo)
	require.NoError(t, err)
	assert.Equal(t, []paperflix.Measurement{{Group: "b", X: 1, Y: 3}}, ms)

	_, err = plot.Load(context.Background(), manifest.Source{Format: "store", Figure: "fig"}, "", nil)
	assert.ErrorIs(t, err, plot.ErrNoRepository)
}

func TestLoadMissingColumn(t *testing.T) {
	_, err := plot.Load(context.Background(), manifest.Source{
		Format: "csv",
		Inline: throughput,
		X:      "length",
		Y:      "speed",
	}, "", nil)
	assert.ErrorIs(t, err, paperflix.ErrMissingColumn)
}

func TestBuild(t *testing.T) {
	fig, err := plot.Build(context.Background(), manifest.Figure{
		Kind:   "errorbar",
		Source: manifest.Source{Format: "csv", Inline: throughput, X: "length", Y: "total_samples", Group: "lev_dist"},
		Bin:    2,
		Title:  "Throughput",
		XLabel: "Length",
	}, "", nil)
	require.NoError(t, err)

	assert.Equal(t, figure.ErrorBar, fig.Kind)
	assert.Equal(t, "Throughput", fig.Title)
	assert.Equal(t, "Length", fig.XLabel)
	assert.Equal(t, []string{"[10, 12]", "(12, 14]"}, fig.Categories)
	require.Len(t, fig.Series, 2)
}

func TestBuildSkipsNonFiniteRows(t *testing.T) {
	fig, err := plot.Build(context.Background(), manifest.Figure{
		Kind:   "errorbar",
		Source: manifest.Source{Format: "csv", Inline: "x,y,g\n1,2,a\nNaN,3,a\n2,4,a\n", X: "x", Y: "y", Group: "g"},
		Bin:    1,
	}, "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"[1, 2]"}, fig.Categories)
	require.Len(t, fig.Series, 1)
	assert.Equal(t, 2, fig.Series[0].Points[0].N)
}

func TestRenderAll(t *testing.T) {
	doc := `
figures:
  - kind: bar
    source:
      inline: |
        lev_dist,length,total_samples
        1,10,100
        2,10,200
      x: length
      y: total_samples
      group: lev_dist
    output: out/bar.tex
  - kind: sankey
    output: out/sankey.tex
    flows:
      - {label: Total, value: 10}
      - {label: Top-1, value: 7, orientation: 1}
      - {label: NR, value: 2}
  - kind: cumulative
    source:
      inline: |
        samples
        1
        2
        3
      y: samples
    bucket: 1
    output: out/cumulative.html
`

	dir := t.TempDir()

	m, err := manifest.Parse(strings.NewReader(doc), dir)
	require.NoError(t, err)

	var logs bytes.Buffer

	err = plot.RenderAll(context.Background(), m.Figures, plot.Options{
		Dir:    dir,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
		Jobs:   2,
	})
	require.NoError(t, err)

	bar, err := os.ReadFile(filepath.Join(dir, "out", "bar.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(bar), `\begin{tikzpicture}`)

	_, err = os.Stat(filepath.Join(dir, "out", "sankey.tex"))
	require.NoError(t, err)

	html, err := os.ReadFile(filepath.Join(dir, "out", "cumulative.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<html")

	assert.Contains(t, logs.String(), "flows do not balance")
	assert.Contains(t, logs.String(), "wrote figure")
}

func TestRenderAllFails(t *testing.T) {
	figures := []manifest.Figure{{
		Name:   "missing",
		Kind:   "bar",
		Source: manifest.Source{Format: "csv", Path: "missing.csv", X: "a", Y: "b"},
		Output: "missing.tex",
		Format: manifest.FormatTikz,
	}}

	err := plot.RenderAll(context.Background(), figures, plot.Options{Dir: t.TempDir()})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
