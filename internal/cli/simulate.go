package cli

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/force"
	"github.com/matzehuels/topochart/pkg/scene"
)

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		example  string
		seed     uint64
		interval time.Duration
		output   string
		headless bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [file]",
		Short: "Watch the force layout of a dataset cool in the terminal",
		Long: `Watch the force layout of a dataset cool in the terminal.

Each frame advances the simulation by one step and redraws the nodes on a
character canvas. Press r to reheat and q to quit. With --headless the
layout is settled without a terminal UI and a legend is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			data, title, err := c.loadDataset(args, example)
			if err != nil {
				return err
			}

			opts := append(c.Config.Chart.ChartOptions(), chart.WithLogger(logger))
			if cmd.Flags().Changed("seed") {
				opts = append(opts, chart.WithSeed(seed))
			}
			ch := chart.New(opts...)
			defer ch.Close()
			ch.Render(scene.New("div"), data)

			if headless {
				prog := newProgress(logger)
				ticks := ch.Settle()
				prog.done(fmt.Sprintf("Settled %d nodes in %d ticks", len(data.Nodes), ticks))
				fmt.Fprintln(cmd.OutOrStdout(), legendTable(data))
			} else {
				p := tea.NewProgram(NewSimulationModel(ch, title, interval), tea.WithContext(ctx), tea.WithAltScreen())
				final, err := p.Run()
				if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return err
				}
				if m, ok := final.(SimulationModel); ok {
					printInfo("Stopped after %d ticks (alpha %.3f)", m.Ticks, ch.Alpha())
				}
			}

			if output != "" {
				if err := writeFile(output, ch.SVG()); err != nil {
					return err
				}
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&example, "example", "", "simulate an embedded dataset instead of a file")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for the initial layout")
	cmd.Flags().DurationVar(&interval, "interval", force.DefaultInterval, "time between frames")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final chart as svg")
	cmd.Flags().BoolVar(&headless, "headless", false, "settle without the terminal UI")

	return cmd
}
