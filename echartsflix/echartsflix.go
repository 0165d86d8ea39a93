package echartsflix

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/snapshot-chromedp/render"
	"github.com/go-sqlt/paperflix/figure"
)

type Renderer interface {
	RenderContent() []byte
}

func Chart(f figure.Figure) (Renderer, error) {
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{
			Title: f.Title,
		}),
		charts.WithAnimation(false),
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: "#FFFFFF",
		}),
	}

	yaxis := opts.YAxis{Name: f.YLabel}
	if f.LogY {
		yaxis.Type = "log"
	}

	switch f.Kind {
	case figure.Bar, figure.Cumulative:
		chart := charts.NewBar()
		chart.SetGlobalOptions(append(global,
			charts.WithXAxisOpts(opts.XAxis{Name: f.XLabel}),
			charts.WithYAxisOpts(yaxis),
		)...)

		chart.SetXAxis(f.Categories)

		for _, s := range f.Series {
			data := make([]opts.BarData, len(f.Categories))

			for _, p := range s.Points {
				data[int(p.X)] = opts.BarData{Name: s.Name, Value: p.Y}
			}

			chart.AddSeries(s.Name, data)
		}

		return chart, nil

	case figure.ErrorBar:
		chart := charts.NewLine()
		chart.SetGlobalOptions(append(global,
			charts.WithXAxisOpts(opts.XAxis{Name: f.XLabel}),
			charts.WithYAxisOpts(yaxis),
		)...)

		chart.SetXAxis(f.Categories)

		for _, s := range f.Series {
			mean := make([]opts.LineData, len(f.Categories))
			low := make([]opts.LineData, len(f.Categories))
			high := make([]opts.LineData, len(f.Categories))

			for _, p := range s.Points {
				i := int(p.X)
				mean[i] = opts.LineData{Value: p.Y}
				low[i] = opts.LineData{Value: p.Low}
				high[i] = opts.LineData{Value: p.High}
			}

			chart.AddSeries(s.Name, mean)
			chart.AddSeries(s.Name+" low", low)
			chart.AddSeries(s.Name+" high", high)
		}

		return chart, nil

	case figure.Scatter:
		chart := charts.NewScatter()
		chart.SetGlobalOptions(append(global,
			charts.WithXAxisOpts(opts.XAxis{Name: f.XLabel, Type: "value"}),
			charts.WithYAxisOpts(yaxis),
		)...)

		for _, s := range f.Series {
			data := make([]opts.ScatterData, len(s.Points))

			for i, p := range s.Points {
				data[i] = opts.ScatterData{Value: []float64{p.X, p.Y}, SymbolSize: 6}
			}

			chart.AddSeries(s.Name, data)
		}

		return chart, nil

	case figure.Sankey:
		chart := charts.NewSankey()
		chart.SetGlobalOptions(global...)

		nodes := make([]opts.SankeyNode, len(f.Flows))
		links := make([]opts.SankeyLink, 0, len(f.Flows))

		for i, flow := range f.Flows {
			nodes[i] = opts.SankeyNode{Name: flow.Label}

			if i > 0 {
				links = append(links, opts.SankeyLink{
					Source: f.Flows[0].Label,
					Target: flow.Label,
					Value:  float32(math.Abs(flow.Value)),
				})
			}
		}

		chart.AddSeries("flows", nodes, links)

		return chart, nil
	}

	return nil, fmt.Errorf("%w: %q", figure.ErrUnknownKind, f.Kind)
}

func WriteHTML(path string, f figure.Figure) error {
	chart, err := Chart(f)
	if err != nil {
		return err
	}

	return os.WriteFile(path, chart.RenderContent(), 0o644)
}

// WritePNG needs a local Chrome for the snapshot.
func WritePNG(path string, f figure.Figure) error {
	chart, err := Chart(f)
	if err != nil {
		return err
	}

	return render.MakeChartSnapshot(chart.RenderContent(), path)
}
