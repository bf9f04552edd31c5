package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/internal/config"
	"github.com/sagenex/teamtree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			cleared, err := cache.Clear(ctx, ch)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if !cleared {
				printInfo("Cache backend %q has nothing to clear", c.Config.Cache.Backend)
				return nil
			}

			printSuccess("Cleared the %s cache", c.Config.Cache.Backend)
			switch backend := ch.(type) {
			case *cache.FileCache:
				printDetail("Directory: %s", backend.Dir())
			case *cache.RedisCache:
				printDetail("Keys: %s*", c.Config.Cache.Prefix)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != config.CacheFile {
				printWarning("cache backend is %q; the directory is only used by the file cache", c.Config.Cache.Backend)
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
