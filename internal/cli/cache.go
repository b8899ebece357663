package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/pkg/cache"
	"github.com/matzehuels/pondera/pkg/errors"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered diagram cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// openCache opens the configured backend without loading the data file.
func (c *CLI) openCache(cmd *cobra.Command) (cache.Cache, cache.Config, error) {
	cfg, err := c.settings()
	if err != nil {
		return nil, cache.Config{}, err
	}
	cc, err := cfg.CacheConfig()
	if err != nil {
		return nil, cc, err
	}
	store, err := cache.Open(cmd.Context(), cc)
	return store, cc, err
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cc, err := c.openCache(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				if cc.Backend == cache.BackendNone {
					printInfo("Cache is disabled")
					return nil
				}
				return errors.New(errors.ErrCodeUnsupported, "the %s backend cannot be cleared", cc.Backend)
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", n)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			} else {
				printDetail("Backend: %s", cc.Backend)
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheDir returns the configured file cache directory, or the default
// under the user cache dir.
func cacheDir(c *CLI) (string, error) {
	cfg, err := c.settings()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
