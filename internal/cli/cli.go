// Package cli implements the ontolayout command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ontolayout/pkg/buildinfo"
	"github.com/matzehuels/ontolayout/pkg/cache"
	"github.com/matzehuels/ontolayout/pkg/config"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
	"github.com/matzehuels/ontolayout/pkg/solver"
	"github.com/matzehuels/ontolayout/pkg/solver/graphviz"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "ontolayout"

	// configFile is the file name looked up in the user config directory.
	configFile = "config.toml"
)

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

	// ConfigPath is the --config flag. Empty means the user config file,
	// if it exists, else built-in defaults.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
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
		Use:   "ontolayout",
		Short: "Ontolayout arranges ontology diagrams",
		Long: `Ontolayout computes positions for the classes, relationships and generalizations
of an ontology diagram. It builds a layout graph from semantic models and an
existing diagram, hands it to a solver and reconciles the result back into
diagram changes without moving anchored entities.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (default: user config dir)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.metricsCommand())
	root.AddCommand(c.anchorsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig reads the --config file, the user config file, or defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.ConfigPath != "" {
		return config.Load(c.ConfigPath)
	}
	path, err := configPath()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return config.Default(), nil
	}
	if err == nil {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, err
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, cfg.Keyer(), newSolvers(), c.Logger)
	r.Timeout = cfg.Solver.Timeout
	if cfg.Cache.TTL > 0 {
		r.TTL = cfg.Cache.TTL
	}
	return r, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Type == config.CacheFile && cfg.Cache.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		cfg.Cache.Dir = dir
	}
	return cfg.OpenCache(ctx)
}

// newSolvers returns the built-in solvers plus graphviz.
func newSolvers() *solver.Registry {
	reg := solver.Default()
	reg.Register(graphviz.New())
	return reg
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/ontolayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the user config file (~/.config/ontolayout/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}
