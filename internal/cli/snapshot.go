package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/snapshot"
	"github.com/sagenex/teamtree/pkg/tree"
)

// snapshotCommand creates the snapshot command group.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record the tree over time and compare snapshots",
		Long: `Record the tree over time and compare snapshots.

Snapshots belong to the member at the root of their tree. list and diff
cover every member in the store unless --owner names one.`,
	}
	cmd.PersistentFlags().StringVar(&c.snapshotOwner, "owner", "", "only use snapshots of this member id")

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotDiffCommand())

	return cmd
}

// withSnapshots opens the configured store for the duration of fn.
func (c *CLI) withSnapshots(ctx context.Context, fn func(snapshot.Store) error) error {
	store, err := c.newSnapshotStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "save [tree.json]",
		Short: "Save the current tree as a snapshot",
		Long: `Save the current tree as a snapshot.

Without an argument the tree is fetched from the API. A tree identical to the
latest snapshot is not saved again unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := firstArg(args)
			resp, err := c.loadTree(ctx, input)
			if err != nil {
				return err
			}
			source := input
			if source == "" {
				source = c.Config.API.URL
			}
			snap, err := snapshot.New(resp, source)
			if err != nil {
				return err
			}

			return c.withSnapshots(ctx, func(store snapshot.Store) error {
				if !force {
					latest, err := store.Latest(ctx, snap.Owner)
					if err != nil && !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
						return err
					}
					if latest != nil && latest.Hash == snap.Hash {
						printInfo("Tree unchanged since snapshot %s", shortID(latest.ID))
						printDetail("Taken %s", latest.TakenAt.Local().Format("Jan 2, 2006 15:04"))
						return nil
					}
				}
				if err := store.Save(ctx, snap); err != nil {
					return err
				}
				printSuccess("Saved snapshot %s", snap.ID)
				printKeyValue("Members", fmt.Sprintf("%d", snap.Stats.Members))
				printKeyValue("Package", layout.FormatUSD(snap.Stats.TotalPackage))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "save even when the tree is unchanged")

	return cmd
}

// snapshotListCommand creates the "snapshot list" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSnapshots(ctx, func(store snapshot.Store) error {
				snaps, err := store.List(ctx, c.snapshotOwner, limit)
				if err != nil {
					return err
				}
				if len(snaps) == 0 {
					printInfo("No snapshots yet")
					printNextStep("Take one", "teamtree snapshot save")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), snapshotTable(snaps))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of snapshots (0 = all)")

	return cmd
}

func snapshotTable(snaps []*snapshot.Snapshot) string {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			s.ID,
			s.Owner,
			s.TakenAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.Stats.Members),
			fmt.Sprintf("%d", s.Stats.MaxDepth),
			layout.FormatUSD(s.Stats.TotalPackage),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Owner", "Taken", "Members", "Depth", "Package").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleDim
			case col >= 3:
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

// snapshotDiffCommand creates the "snapshot diff" subcommand.
func (c *CLI) snapshotDiffCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff [from-id] [to-id]",
		Short: "Show members who joined, left or moved between snapshots",
		Long: `Compare two snapshots.

Without arguments the two newest snapshots are compared. With one id that
snapshot is compared against the newest.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSnapshots(ctx, func(store snapshot.Store) error {
				from, to, err := diffPair(ctx, store, c.snapshotOwner, args)
				if err != nil {
					return err
				}
				d := snapshot.Diff(from, to)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(d)
				}
				printDelta(d, to.Tree)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the delta as JSON")

	return cmd
}

// diffPair resolves the snapshots named by args, oldest first.
// Without ids both come from the same member.
func diffPair(ctx context.Context, store snapshot.Store, owner string, args []string) (from, to *snapshot.Snapshot, err error) {
	switch len(args) {
	case 2:
		if from, err = store.Get(ctx, owner, args[0]); err != nil {
			return nil, nil, err
		}
		to, err = store.Get(ctx, owner, args[1])
		return from, to, err
	case 1:
		if from, err = store.Get(ctx, owner, args[0]); err != nil {
			return nil, nil, err
		}
		to, err = store.Latest(ctx, from.Owner)
		return from, to, err
	}
	if owner == "" {
		latest, err := store.Latest(ctx, "")
		if err != nil {
			return nil, nil, err
		}
		owner = latest.Owner
	}
	snaps, err := store.List(ctx, owner, 2)
	if err != nil {
		return nil, nil, err
	}
	if len(snaps) < 2 {
		return nil, nil, errors.New(errors.ErrCodeSnapshotNotFound, "need two snapshots to diff, have %d", len(snaps))
	}
	return snaps[1], snaps[0], nil
}

// printDelta prints a human-readable delta. Names are looked up in the newer
// tree where possible.
func printDelta(d snapshot.Delta, newer *tree.Node) {
	printInfo("%s %s %s", shortID(d.From), iconArrow, shortID(d.To))
	if d.Empty() {
		printSuccess("No changes")
		return
	}

	change := d.MembersAfter - d.MembersBefore
	printKeyValue("Members", fmt.Sprintf("%d %s %d (%+d)", d.MembersBefore, iconArrow, d.MembersAfter, change))
	if d.PackageDelta != 0 {
		sign := "+"
		if d.PackageDelta < 0 {
			sign = "-"
		}
		abs := d.PackageDelta
		if abs < 0 {
			abs = -abs
		}
		printKeyValue("Package", sign+layout.FormatUSD(abs))
	}

	index := tree.Index(newer)
	name := func(id string) string {
		if n, ok := index[id]; ok && n.DisplayName != "" {
			return fmt.Sprintf("%s (%s)", n.DisplayName, id)
		}
		return id
	}

	if len(d.Joined) > 0 {
		printNewline()
		fmt.Fprintln(stdout, StyleSuccess.Render(fmt.Sprintf("Joined (%d)", len(d.Joined))))
		for _, id := range d.Joined {
			printDetail("+ %s", name(id))
		}
	}
	if len(d.Removed) > 0 {
		printNewline()
		fmt.Fprintln(stdout, StyleWarning.Render(fmt.Sprintf("Removed (%d)", len(d.Removed))))
		for _, id := range d.Removed {
			printDetail("- %s", id)
		}
	}
	if len(d.Moved) > 0 {
		printNewline()
		fmt.Fprintln(stdout, StyleHighlight.Render(fmt.Sprintf("Moved (%d)", len(d.Moved))))
		for _, m := range d.Moved {
			printDetail("%s: %s %s %s", name(m.ID), m.From, iconArrow, m.To)
		}
	}
}

// shortID abbreviates a uuid for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
