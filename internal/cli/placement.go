package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/pkg/backend"
	"github.com/sagenex/teamtree/pkg/layout"
)

// placementCommand creates the placement command group.
func (c *CLI) placementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "placement",
		Short: "List pending recruits and place them in the tree",
	}

	cmd.AddCommand(c.placementListCommand())
	cmd.AddCommand(c.placementPlaceCommand())

	return cmd
}

// placementListCommand creates the "placement list" subcommand.
func (c *CLI) placementListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show recruits waiting for placement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireToken(); err != nil {
				return err
			}
			client, err := c.newClient()
			if err != nil {
				return err
			}

			queue, err := spin(cmd.Context(), "Fetching placement queue", "",
				func(ctx context.Context) ([]backend.PendingUser, error) {
					return client.FetchPlacementQueue(ctx)
				})
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("No recruits are waiting for placement")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), queueTable(queue))
			printNextStep("Place one", "teamtree placement place <user-id> --parent <member-id>")
			return nil
		},
	}
}

// queueTable renders the pending recruits.
func queueTable(queue []backend.PendingUser) string {
	rows := make([][]string, 0, len(queue))
	for _, u := range queue {
		joined := "—"
		if !u.JoinedAt.IsZero() {
			joined = u.JoinedAt.Format("Jan 2, 2006")
		}
		rows = append(rows, []string{u.UserID, u.FullName, layout.FormatUSD(u.PackageValue), joined})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("User", "Name", "Package", "Joined").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

// placementPlaceCommand creates the "placement place" subcommand.
func (c *CLI) placementPlaceCommand() *cobra.Command {
	var (
		parent string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "place <user-id>",
		Short: "Place a pending recruit under a member of your tree",
		Long: `Place a pending recruit under a member of your tree.

The tree and the placement queue are fetched first: the recruit must be
waiting for placement and the parent must be part of your tree. With
--dry-run only these checks run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireToken(); err != nil {
				return err
			}
			client, err := c.newClient()
			if err != nil {
				return err
			}
			req := backend.PlacementRequest{
				NewUserID:         strings.TrimSpace(args[0]),
				PlacementParentID: strings.TrimSpace(parent),
			}

			if dryRun {
				return c.checkPlacement(cmd.Context(), client, req)
			}

			res, err := spin(cmd.Context(), "Placing "+req.NewUserID, "",
				func(ctx context.Context) (backend.PlacementResult, error) {
					return client.Place(ctx, req)
				})
			if err != nil {
				return err
			}
			msg := res.Message
			if msg == "" {
				msg = fmt.Sprintf("Placed %s under %s", req.NewUserID, req.PlacementParentID)
			}
			printSuccess("%s", msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "member id to place the recruit under (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the placement without submitting it")
	_ = cmd.MarkFlagRequired("parent")

	return cmd
}

// checkPlacement runs the placement checks without submitting.
func (c *CLI) checkPlacement(ctx context.Context, client *backend.Client, req backend.PlacementRequest) error {
	resp, err := client.FetchTeamTree(ctx)
	if err != nil {
		return err
	}
	queue, err := client.FetchPlacementQueue(ctx)
	if err != nil {
		return err
	}
	if err := backend.ValidatePlacement(resp, queue, req); err != nil {
		return err
	}
	printSuccess("%s can be placed under %s", req.NewUserID, req.PlacementParentID)
	return nil
}
