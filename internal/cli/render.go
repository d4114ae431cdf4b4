package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/pkg/pipeline"
	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/render"
	"github.com/matzehuels/topochart/pkg/topology"
)

// renderFlags holds the command-line flags for the render command. Zero
// values mean "use the config".
type renderFlags struct {
	output   string
	example  string
	formats  string
	engine   string
	width    float64
	height   float64
	seed     uint64
	scale    float64
	strict   bool
	detailed bool
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Lay out a topology dataset and write it as svg, png, pdf, json or dot",
		Long: `Lay out a topology dataset and write the chart to one or more files.

The dataset is read from a JSON or YAML file, or taken from the embedded
examples with --example. With one format and --output the file is written
there; otherwise each format is written next to the input as <base>.<format>.`,
		Example: `  topochart render network.yaml
  topochart render --example topology -f svg,png -o out/topology
  topochart render network.json --engine graphviz -f dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, source, err := c.renderOptions(cmd, args, flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, source, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVar(&flags.example, "example", "", "render an embedded dataset instead of a file")
	f.StringVarP(&flags.formats, "format", "f", "", "output format(s): svg, png, pdf, json, dot (comma-separated)")
	f.StringVar(&flags.engine, "engine", "", "layout engine: force, graphviz")
	f.Float64Var(&flags.width, "width", 0, "chart width")
	f.Float64Var(&flags.height, "height", 0, "chart height")
	f.Uint64Var(&flags.seed, "seed", 0, "random seed for the initial layout")
	f.Float64Var(&flags.scale, "scale", 0, "png scale factor")
	f.BoolVar(&flags.strict, "strict", false, "reject datasets with duplicate ids or dangling links")
	f.BoolVar(&flags.detailed, "detailed", false, "show node metadata in graphviz labels")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the render cache")
	f.BoolVar(&flags.refresh, "refresh", false, "recompute even when cached")

	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(render.Formats, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions(pipeline.Engines, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("example", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return c.newRegistry().Datasets(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// renderOptions merges config defaults, flags and the dataset source. It
// returns the options and the name outputs are derived from.
func (c *CLI) renderOptions(cmd *cobra.Command, args []string, flags renderFlags) (pipeline.Options, string, error) {
	opts := c.pipelineOptions()
	changed := cmd.Flags().Changed

	if changed("format") {
		formats, err := render.ParseFormats(flags.formats)
		if err != nil {
			return opts, "", err
		}
		opts.Formats = formats
	}
	if changed("engine") {
		opts.Engine = flags.engine
	}
	if changed("width") {
		opts.Width = flags.width
	}
	if changed("height") {
		opts.Height = flags.height
	}
	if changed("seed") {
		opts.Seed = flags.seed
	}
	if changed("scale") {
		opts.Scale = flags.scale
	}
	if changed("strict") {
		opts.Strict = flags.strict
	}
	opts.Detailed = flags.detailed
	opts.Refresh = flags.refresh

	if len(args) == 1 && flags.example != "" {
		return opts, "", fmt.Errorf("use either a file or --example, not both")
	}
	if len(args) == 1 {
		data, err := topology.ReadDatasetFile(args[0])
		if err != nil {
			return opts, "", err
		}
		opts.Data = data
		return opts, args[0], nil
	}

	opts.Dataset = flags.example
	if opts.Dataset == "" {
		opts.Dataset = registry.DefaultDataset
	}
	return opts, opts.Dataset, nil
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, source string, flags renderFlags) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", source)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Laying out "+source+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths := outputPaths(flags.output, source, opts.Formats)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		logger.Debug("wrote artifact", "format", format, "path", path, "bytes", len(result.Artifacts[format]))
	}

	printSuccess("Rendered %s", source)
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	return nil
}

// outputPaths maps each format to its output file. A single format with
// an explicit output goes exactly there.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path. Without an output the input's
// extension is stripped; a known format extension on output is stripped
// too.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(render.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
