package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sqlt/paperflix/manifest"
	"github.com/go-sqlt/paperflix/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlow(t *testing.T) {
	tests := map[string]manifest.Flow{
		"Total=2211":     {Label: "Total", Value: 2211},
		"Top-1=-677:1":   {Label: "Top-1", Value: -677, Orientation: 1},
		"NR=-716:-1":     {Label: "NR", Value: -716, Orientation: -1},
		"a=b=3":          {Label: "a=b", Value: 3},
		"Timeout=12.5:0": {Label: "Timeout", Value: 12.5},
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := parseFlow(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	for _, input := range []string{"=3", "Total", "Total=x", "NR=-716:up"} {
		_, err := parseFlow(input)
		assert.Error(t, err, input)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.csv"), []byte("k,budget,precision\n1,10,0.5\n1,20,0.6\n2,10,0.7\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "figures.yaml"), []byte(`
figures:
  - kind: bar
    source: {path: log.csv, x: budget, y: precision, group: k}
    output: out/precision.tex
`), 0o644))

	rootCmd.SetArgs([]string{"render", filepath.Join(dir, "figures.yaml"), "--jobs", "1"})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "out", "precision.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `\addplot`)
}

func TestFigureCommandReadsStdin(t *testing.T) {
	output := filepath.Join(t.TempDir(), "precision.tex")

	rootCmd.SetIn(strings.NewReader("k,budget,precision\n1,10,0.5\n2,10,0.7\n"))
	rootCmd.SetArgs([]string{"figure", "--kind", "bar", "--x", "budget", "--y", "precision", "--group", "k", "-o", output})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `\addplot`)
}

func TestSummarizeRejectsConfidence(t *testing.T) {
	input := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(input, []byte("g,y\na,1\na,2\na,3\n"), 0o644))

	rootCmd.SetArgs([]string{"summarize", input, "--y", "y", "--group", "g", "--confidence", "95"})
	assert.ErrorIs(t, rootCmd.Execute(), summary.ErrInvalidConfidence)
}
