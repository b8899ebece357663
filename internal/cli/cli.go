package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/pkg/buildinfo"
	"github.com/matzehuels/pondera/pkg/cache"
	"github.com/matzehuels/pondera/pkg/config"
	"github.com/matzehuels/pondera/pkg/pipeline"
	"github.com/matzehuels/pondera/pkg/weights"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "pondera"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	dataPath   string
	cfg        *config.Config
}

// New creates a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Pondera explores university admission weightings",
		Long: `Pondera turns the Andalusian admission weighting table (ponderaciones) into
layered flow diagrams linking Bachillerato subjects to degree programs, and
estimates admission scores from exam grades.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultFile+" when present)")
	root.PersistentFlags().StringVarP(&c.dataPath, "data", "d", "", "weighting table path or URL (overrides config)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tableCommand())
	root.AddCommand(c.calcCommand())
	root.AddCommand(c.legendCommand())
	root.AddCommand(c.usefulnessCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings & Data
// =============================================================================

// settings loads the configuration once and applies the --data flag.
func (c *CLI) settings() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.dataPath != "" {
		cfg.Data.Path = c.dataPath
	}
	c.cfg = cfg
	return cfg, nil
}

// loadTable reads and cleans the configured weighting table.
func (c *CLI) loadTable(ctx context.Context) (*weights.Table, error) {
	cfg, err := c.settings()
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	t, err := weights.Load(ctx, cfg.Data.Path, cfg.DataOptions())
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded table",
		"path", cfg.Data.Path,
		"rows", t.Len(),
		"columns", len(t.Columns()),
		"skipped", t.Skipped(),
		"encoding", t.Encoding())
	prog.done("Loaded " + cfg.Data.Path)
	return t, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner loads the table and opens the configured cache. noCache
// replaces the cache with the null backend.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.settings()
	if err != nil {
		return nil, err
	}
	t, err := c.loadTable(ctx)
	if err != nil {
		return nil, err
	}

	cc, err := cfg.CacheConfig()
	if err != nil {
		return nil, err
	}
	if noCache {
		cc.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, cc)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cc.Backend, "err", err)
		store = cache.NewNullCache()
	}

	var keyer cache.Keyer
	if cfg.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Scope)
	}
	r := pipeline.NewRunner(t, nil, store, keyer, c.Logger)
	r.TTL = cc.TTL
	return r, nil
}

// timeout bounds long renders started from the command line.
const renderTimeout = 2 * time.Minute
