package tikzflix

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-sqlt/paperflix/figure"
	"github.com/go-sqlt/paperflix/summary"
)

var (
	Marks  = []string{"*", "square*", "triangle*", "diamond*", "o", "x"}
	Colors = []string{"green", "blue", "red", "orange", "violet", "teal"}
)

// Render writes a pgfplots picture (a plain TikZ drawing for Sankey
// figures). A caption wraps it into a figure environment.
func Render(w io.Writer, f figure.Figure) error {
	var sb strings.Builder

	if f.Caption != "" {
		sb.WriteString("\\begin{figure}[H]\n  \\centering\n")
	}

	sb.WriteString("  \\begin{tikzpicture}\n")

	switch f.Kind {
	case figure.Sankey:
		sankey(&sb, f)
	case figure.Scatter:
		scatter(&sb, f)
	case figure.Bar, figure.Cumulative:
		bar(&sb, f)
	case figure.ErrorBar:
		errorbar(&sb, f)
	default:
		return fmt.Errorf("%w: %q", figure.ErrUnknownKind, f.Kind)
	}

	sb.WriteString("  \\end{tikzpicture}\n")

	if f.Caption != "" {
		fmt.Fprintf(&sb, "  \\caption{%s}\n", f.Caption)

		if f.Label != "" {
			fmt.Fprintf(&sb, "  \\label{%s}\n", f.Label)
		}

		sb.WriteString("\\end{figure}\n")
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func axis(sb *strings.Builder, f figure.Figure, extra ...string) {
	width, height := f.Width, f.Height
	if width == "" {
		width = `\linewidth`
	}

	if height == "" {
		height = "5cm"
	}

	options := []string{
		fmt.Sprintf("width=%s, height=%s", width, height),
	}

	if f.Title != "" {
		options = append(options, fmt.Sprintf("title={%s}", f.Title))
	}

	if f.XLabel != "" || f.YLabel != "" {
		options = append(options, fmt.Sprintf("xlabel={%s}, ylabel={%s}", f.XLabel, f.YLabel))
	}

	if f.LogY {
		options = append(options, "ymode=log")
	}

	options = append(options, extra...)
	options = append(options,
		"xmajorgrids, ymajorgrids",
		"tick align=outside",
		`tick label style={font=\scriptsize}`,
		`label style={font=\scriptsize}`,
		`legend style={draw=none, fill=none, font=\scriptsize, at={(0.98,0.98)}, anchor=north east}`,
	)

	sb.WriteString("    \\begin{axis}[\n")

	for _, o := range options {
		fmt.Fprintf(sb, "      %s,\n", o)
	}

	sb.WriteString("    ]\n")
}

func categoryTicks(f figure.Figure) string {
	ticks := make([]string, len(f.Categories))

	for i := range f.Categories {
		ticks[i] = fmt.Sprint(i)
	}

	labels := make([]string, len(f.Categories))

	for i, c := range f.Categories {
		labels[i] = "{" + c + "}"
	}

	return fmt.Sprintf("xtick={%s}, xticklabels={%s}", strings.Join(ticks, ","), strings.Join(labels, ","))
}

func legend(sb *strings.Builder, f figure.Figure) {
	if len(f.Series) < 2 && (len(f.Series) == 0 || f.Series[0].Name == "") {
		return
	}

	names := make([]string, len(f.Series))

	for i, s := range f.Series {
		names[i] = "{" + Escape(s.Name) + "}"
	}

	fmt.Fprintf(sb, "      \\legend{%s}\n", strings.Join(names, ","))
}

func endAxis(sb *strings.Builder, f figure.Figure) {
	legend(sb, f)
	sb.WriteString("    \\end{axis}\n")
}

func scatter(sb *strings.Builder, f figure.Figure) {
	axis(sb, f, "scaled y ticks=false")

	for i, s := range f.Series {
		fmt.Fprintf(sb, "      \\addplot+[only marks, mark=%s, mark size=1.5pt]\n", Marks[i%len(Marks)])
		sb.WriteString("        table[col sep=comma, x=x, y=y]{\n")
		sb.WriteString("x,y\n")

		for _, p := range s.Points {
			fmt.Fprintf(sb, "%g,%g\n", p.X, p.Y)
		}

		sb.WriteString("        };\n")
	}

	endAxis(sb, f)
}

func bar(sb *strings.Builder, f figure.Figure) {
	width := "bar width=4pt"
	if f.Kind == figure.Cumulative {
		width = "bar width=1pt"
	}

	axis(sb, f, "ybar", width, categoryTicks(f))

	for i, s := range f.Series {
		color := Colors[i%len(Colors)]

		fmt.Fprintf(sb, "      \\addplot[%s, fill=%s!50] coordinates {", color, color)

		for _, p := range s.Points {
			fmt.Fprintf(sb, " (%g, %g)", p.X, p.Y)
		}

		sb.WriteString(" };\n")
	}

	endAxis(sb, f)
}

func errorbar(sb *strings.Builder, f figure.Figure) {
	axis(sb, f, categoryTicks(f))

	for i, s := range f.Series {
		color := Colors[i%len(Colors)]

		fmt.Fprintf(sb, "      \\addplot+[%s, mark=%s, error bars/.cd, y dir=both, y explicit] coordinates {\n", color, Marks[i%len(Marks)])

		for _, p := range s.Points {
			fmt.Fprintf(sb, "        (%g, %g) += (0, %g) -= (0, %g)\n", p.X, p.Y, p.High-p.Y, p.Y-p.Low)
		}

		sb.WriteString("      };\n")
	}

	endAxis(sb, f)
}

// sankey draws the inflow as a trunk with every outflow leaving its right
// edge as an arrow whose thickness is proportional to the flow.
func sankey(sb *strings.Builder, f figure.Figure) {
	const (
		height = 6.0
		trunk  = 2.0
		arrow  = 1.5
		bend   = 0.6
	)

	total := math.Abs(f.Flows[0].Value)
	scale := height / total

	sb.WriteString("    \\definecolor{flow}{HTML}{099368}\n")
	fmt.Fprintf(sb, "    \\fill[flow] (0, 0) -- (%.3f, 0) -- (%.3f, %.3f) -- (0, %.3f) -- (0.4, %.3f) -- cycle;\n",
		trunk, trunk, height, height, height/2)
	fmt.Fprintf(sb, "    \\node[anchor=east, font=\\scriptsize] at (-0.1, %.3f) {%s (%g)};\n",
		height/2, Escape(f.Flows[0].Label), total)

	top := height

	for _, flow := range f.Flows[1:] {
		w := math.Abs(flow.Value) * scale
		y0, y1 := top-w, top
		dy := float64(flow.Orientation) * bend
		mid := (y0+y1)/2 + dy

		fmt.Fprintf(sb, "    \\fill[flow, opacity=0.8] (%.3f, %.3f) -- (%.3f, %.3f) -- (%.3f, %.3f) -- (%.3f, %.3f) -- (%.3f, %.3f) -- cycle;\n",
			trunk, y1,
			trunk+arrow, y1+dy,
			trunk+arrow+0.3, mid,
			trunk+arrow, y0+dy,
			trunk, y0,
		)
		fmt.Fprintf(sb, "    \\node[anchor=west, font=\\scriptsize] at (%.3f, %.3f) {%s (%g)};\n",
			trunk+arrow+0.4, mid, Escape(flow.Label), math.Abs(flow.Value))

		top = y0
	}
}

// Table writes per group statistics as a booktabs table.
func Table(w io.Writer, caption, label string, summaries []summary.Summary) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, `
\begin{table}[ht]
\centering
\caption{%s}
\begin{tabular}{lrrrrr}
\toprule
Group & n & Mean & CI low & CI high & IQR \\
\midrule`, caption)

	for _, s := range summaries {
		fmt.Fprintf(&sb, `
	%s & %d & %.4g & %.4g & %.4g & %.4g \\`,
			Escape(s.Key), s.N, s.Mean, s.Low, s.High, s.IQR())
	}

	fmt.Fprintf(&sb, `
\bottomrule
\end{tabular}
\label{%s}
\end{table}
`, label)

	_, err := io.WriteString(w, sb.String())

	return err
}

var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`_`, `\_`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
)

// Escape makes data derived text safe inside LaTeX.
func Escape(s string) string {
	return escaper.Replace(s)
}
