package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/paperflix/manifest"
	"github.com/go-sqlt/paperflix/plot"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <manifest>",
	Short: "Render every figure of a manifest",
	Long: `Render every figure listed in a YAML manifest. Relative paths in the
manifest are resolved against the manifest's directory.

Examples:
  paperflix render figures.yaml
  paperflix render figures.yaml --only throughput --jobs 1
  paperflix render figures.yaml --store sqlx --dsn postgres://...`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

// Flags
var (
	renderJobs int
	renderOnly []string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntVarP(&renderJobs, "jobs", "j", 4, "Figures rendered concurrently")
	renderCmd.Flags().StringSliceVar(&renderOnly, "only", nil, "Render only the named figures")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(args[0])
	if err != nil {
		return err
	}

	figures := m.Figures

	if len(renderOnly) > 0 {
		figures = slices.DeleteFunc(slices.Clone(figures), func(f manifest.Figure) bool {
			return !slices.Contains(renderOnly, f.Name)
		})

		if len(figures) == 0 {
			return fmt.Errorf("no figure named %v in %s", renderOnly, args[0])
		}
	}

	repo, closeRepo, err := repositoryFor(ctx, figures)
	if err != nil {
		return err
	}

	defer closeRepo()

	log.Info("rendering", "manifest", args[0], "figures", len(figures))

	return plot.RenderAll(ctx, figures, plot.Options{
		Dir:        m.Dir,
		Repository: repo,
		Logger:     log,
		Jobs:       renderJobs,
	})
}

// repositoryFor only connects when a figure reads from the store.
func repositoryFor(ctx context.Context, figures []manifest.Figure) (paperflix.Repository, func(), error) {
	if !slices.ContainsFunc(figures, func(f manifest.Figure) bool { return f.Source.Format == "store" }) {
		return nil, func() {}, nil
	}

	return openRepository(ctx)
}
