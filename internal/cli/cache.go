package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/badgekit/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the asset and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached images and rendered badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ch.Close()

			n, where, err := clearCache(cmd.Context(), ch, c.Config.Cache.Prefix)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("%s", where)
			return nil
		},
	}
}

// clearCache empties ch and reports the number of removed entries and a
// description of the backend.
func clearCache(ctx context.Context, ch cache.Cache, prefix string) (int, string, error) {
	switch ch := ch.(type) {
	case *cache.FileCache:
		n, err := ch.Len()
		if err != nil {
			return 0, "", fmt.Errorf("count cache entries: %w", err)
		}
		if err := ch.Clear(); err != nil {
			return 0, "", fmt.Errorf("clear cache: %w", err)
		}
		return n, "Directory: " + ch.Dir(), nil
	case *cache.RedisCache:
		total := 0
		for _, kind := range []string{"asset", "artifact"} {
			n, err := ch.Purge(ctx, prefix+kind+":*")
			total += n
			if err != nil {
				return total, "", fmt.Errorf("clear redis cache: %w", err)
			}
		}
		return total, "Redis keys: " + prefix + "{asset,artifact}:*", nil
	}
	return 0, "", nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == cacheBackendRedis {
				fmt.Println(c.Config.Cache.RedisURL)
				return nil
			}
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
