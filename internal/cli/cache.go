package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/pkg/cache"
	"github.com/matzehuels/topochart/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. Redis entries
// are matched by the configured key prefix.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			switch backend := c.Config.Cache.Backend; backend {
			case config.CacheFile:
				dir, err := c.Config.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Directory: %s", fc.Dir())
			case config.CacheRedis:
				rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
				if err != nil {
					return err
				}
				defer rc.Close()

				spinner := newSpinnerWithContext(ctx, "Scanning "+c.Config.Cache.Prefix+"*...")
				spinner.Start()
				n, err := rc.Clear(ctx, c.Config.Cache.Prefix+"*")
				spinner.Stop()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Redis: %s", c.Config.Cache.RedisURL)
			default:
				printWarning("The %s cache keeps nothing between runs; nothing to clear", backend)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch c.Config.Cache.Backend {
			case config.CacheFile:
				dir, err := c.Config.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(out, dir)
			case config.CacheRedis:
				fmt.Fprintln(out, c.Config.Cache.RedisURL)
			default:
				fmt.Fprintln(out, c.Config.Cache.Backend)
			}
			return nil
		},
	}
}
