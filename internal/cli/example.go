package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/topology"
	"github.com/matzehuels/topochart/pkg/vizutil"
)

// datasetFormats are the encodings accepted by --format.
var datasetFormats = []string{string(topology.FormatJSON), string(topology.FormatYAML)}

func parseDatasetFormat(s string) (topology.Format, error) {
	switch f := topology.Format(s); f {
	case "", topology.FormatJSON, topology.FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown dataset format %q (want json or yaml)", s)
	}
}

// exampleCommand creates the example command, which writes one of the
// embedded datasets.
func (c *CLI) exampleCommand() *cobra.Command {
	var (
		output string
		format string
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "example [name]",
		Short: "Print or save an embedded example dataset",
		Example: `  topochart example --list
  topochart example topology -o topology.yaml`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return c.newRegistry().Datasets(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := c.newRegistry()
			if list {
				for _, name := range reg.Datasets() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			f, err := parseDatasetFormat(format)
			if err != nil {
				return err
			}
			name := registry.DefaultDataset
			if len(args) == 1 {
				name = args[0]
			}
			data, err := reg.Dataset(name)
			if err != nil {
				return err
			}
			if err := writeDataset(cmd.OutOrStdout(), data, output, f); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Wrote example %s", name)
				printFile(output)
				printNextStep("Render it", "topochart render "+output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "", "dataset encoding: json, yaml (default from output extension)")
	cmd.Flags().BoolVar(&list, "list", false, "list the embedded datasets")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(datasetFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// randomCommand creates the random command, which generates a topology of
// routers, networks, ports and network connectors.
func (c *CLI) randomCommand() *cobra.Command {
	var (
		opts   vizutil.TopologyOptions
		seed   uint64
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate a random topology dataset",
		Example: `  topochart random --routers 3 --networks 6 --ports 12 -o random.json
  topochart random --seed 7 | topochart render /dev/stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseDatasetFormat(format)
			if err != nil {
				return err
			}
			if min(opts.Routers, opts.Networks, opts.Ports, opts.Connectors) < 0 {
				return fmt.Errorf("node counts must not be negative")
			}
			if !cmd.Flags().Changed("seed") {
				seed = c.Config.Chart.Seed
			}
			reg := registry.New(loggerFromContext(cmd.Context()), registry.WithSeed(seed))
			data, err := reg.Utils.RandomTopology(opts)
			if err != nil {
				return err
			}
			if err := writeDataset(cmd.OutOrStdout(), data, output, f); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Generated %d nodes", len(data.Nodes))
				printFile(output)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Routers, "routers", 2, "number of routers")
	f.IntVar(&opts.Networks, "networks", 4, "number of networks")
	f.IntVar(&opts.Ports, "ports", 8, "number of ports")
	f.IntVar(&opts.Connectors, "connectors", 2, "number of network connectors")
	f.Uint64Var(&seed, "seed", 0, "random seed (default from config)")
	f.StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	f.StringVar(&format, "format", "", "dataset encoding: json, yaml (default from output extension)")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(datasetFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}
