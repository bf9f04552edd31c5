package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/pkg/pipeline"
	"github.com/sagenex/teamtree/pkg/tree"
)

// fetchCommand creates the fetch command, which saves the raw tree response.
func (c *CLI) fetchCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the placement tree as JSON",
		Long: `Download the authenticated member's placement tree from the Sagenex API.

The response is written unchanged (tree plus optional parent reference) so it
can be fed back into 'layout', 'render' or 'browse' without another request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.loadTree(cmd.Context(), "")
			if err != nil {
				return err
			}
			if output == "" {
				data, err := tree.Marshal(resp)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := tree.WriteFile(resp, output); err != nil {
				return err
			}
			stats := tree.ComputeStats(resp.Tree)
			printSuccess("Fetched %d members", stats.Members)
			printFile(output)
			printNextStep("Render it", "teamtree render "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// loadTree reads a tree response from path, or fetches it from the API when
// path is empty.
func (c *CLI) loadTree(ctx context.Context, path string) (tree.Response, error) {
	f, err := c.fetcher(path)
	if err != nil {
		return tree.Response{}, err
	}
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return tree.Response{}, err
	}
	defer runner.Close()

	return spin(ctx, "Fetching tree", "", func(ctx context.Context) (tree.Response, error) {
		return runner.Fetch(ctx, f, pipeline.Options{Logger: c.Logger})
	})
}

// fetcher returns the tree source for a command: a saved response file, or
// the backend.
func (c *CLI) fetcher(path string) (pipeline.Fetcher, error) {
	if path != "" {
		resp, err := tree.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return pipeline.Static(resp), nil
	}
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	return c.newClient()
}
