package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/scene"
)

// chartsCommand creates the charts command for charts saved by the server.
func (c *CLI) chartsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Manage charts saved by the server",
	}

	cmd.AddCommand(c.chartsListCommand())
	cmd.AddCommand(c.chartsExportCommand())
	cmd.AddCommand(c.chartsDeleteCommand())

	return cmd
}

func (c *CLI) chartsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored charts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No stored charts")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), chartsTable(summaries, time.Now()))
			return nil
		},
	}
}

// chartsExportCommand writes a stored chart as SVG at its saved positions.
func (c *CLI) chartsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a stored chart as svg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Load(ctx, args[0])
			if err != nil {
				return err
			}

			l := snap.Layout
			ch := chart.New(append(c.Config.Chart.ChartOptions(),
				chart.WithLogger(loggerFromContext(ctx)),
				chart.WithWidth(l.Width),
				chart.WithHeight(l.Height),
				chart.WithMargin(l.Margin),
			)...)
			defer ch.Close()
			ch.Render(scene.New("div"), snap.Data)
			ch.Restore(l)

			if output == "" {
				output = snap.ID + ".svg"
			}
			if err := writeFile(output, ch.SVG()); err != nil {
				return err
			}
			printSuccess("Exported %s", snap.ID)
			if snap.Name != "" {
				printKeyValue("Name", snap.Name)
			}
			printKeyValue("Nodes", fmt.Sprint(len(l.Nodes)))
			printKeyValue("Size", fmt.Sprintf("%gx%g", l.Width, l.Height))
			printKeyValue("Updated", formatRelativeTime(snap.UpdatedAt, time.Now()))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <id>.svg)")
	return cmd
}

func (c *CLI) chartsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored charts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range args {
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
			}
			printSuccess("Deleted %d chart(s)", len(args))
			return nil
		},
	}
}
