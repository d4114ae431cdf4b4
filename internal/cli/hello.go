package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/pkg/hello"
	"github.com/matzehuels/topochart/pkg/scene"
)

// helloCommand creates the hello command, which renders the demo
// component as markup.
func (c *CLI) helloCommand() *cobra.Command {
	var (
		fontSize float64
		color    string
		hover    bool
	)

	cmd := &cobra.Command{
		Use:   "hello [values...]",
		Short: "Render the hello demo component",
		Example: `  topochart hello
  topochart hello 1 2 3 --font-size 20 --color green --hover`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			h := hello.New().SetFontSize(fontSize).SetFontColor(color)
			if err := h.On(hello.EventHover, func(d any) {
				fmt.Fprintf(out, "hovered: %s\n", hello.Format(d))
			}); err != nil {
				return err
			}

			var data any = []int{10, 20, 30}
			if len(args) > 0 {
				data = args
			}

			root := scene.New("body")
			div := h.Render(root, data)
			if err := root.WriteXML(out); err != nil {
				return err
			}
			fmt.Fprintln(out)

			if hover {
				return h.Hover(div)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&fontSize, "font-size", hello.DefaultFontSize, "font size in px")
	cmd.Flags().StringVar(&color, "color", hello.DefaultFontColor, "font color")
	cmd.Flags().BoolVar(&hover, "hover", false, "fire a hover event after rendering")

	return cmd
}
