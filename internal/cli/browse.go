package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/pkg/render/text"
)

// browseCommand creates the browse command: an interactive tree browser, or a
// static outline with --outline.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		outline      bool
		depth        int
		hidePackages bool
		flags        layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "browse [tree.json]",
		Short: "Explore the placement tree in the terminal",
		Long: `Explore the placement tree interactively.

Members are listed as an outline; subtrees expand and collapse in place and
the panel below shows the selected member's package, direct recruits and
downline size. With --outline the tree is printed once instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)

			l, err := c.computeLayout(cmd.Context(), firstArg(args), opts)
			if err != nil {
				return err
			}

			if outline {
				out := text.Render(l.ToLayout(), text.Options{
					HidePackages: hidePackages || opts.HidePackages,
					MaxDepth:     depth,
				})
				_, err := fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}

			p := tea.NewProgram(NewTreeModel(l), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&outline, "outline", false, "print the tree once instead of browsing")
	cmd.Flags().IntVar(&depth, "depth", 0, "outline depth limit (0 = unlimited)")
	cmd.Flags().BoolVar(&hidePackages, "hide-packages", false, "omit package values in the outline")
	flags.register(cmd)

	return cmd
}
