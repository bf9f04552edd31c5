// Package cli implements the teamtree command-line interface.
package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/internal/config"
	"github.com/sagenex/teamtree/pkg/backend"
	"github.com/sagenex/teamtree/pkg/buildinfo"
	"github.com/sagenex/teamtree/pkg/cache"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/observability"
	"github.com/sagenex/teamtree/pkg/pipeline"
	"github.com/sagenex/teamtree/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "teamtree"

	// defaultOutputBase is the file name stem for rendered artifacts.
	defaultOutputBase = "teamtree"
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

	// Config is loaded before every command runs.
	Config config.Config

	configPath string
	apiURL     string
	token      string

	snapshotOwner string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "teamtree lays out and renders Sagenex placement trees",
		Long:         `teamtree fetches a member's sponsor/placement tree from the Sagenex API, lays it out as a top-to-bottom layered graph and renders it as JSON, SVG, DOT, PNG, PDF or a terminal outline.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			observability.NewLogHooks(c.Logger).Register()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/teamtree/config.toml)")
	pf.StringVar(&c.apiURL, "api-url", "", "Sagenex API base URL (overrides config and "+config.EnvAPIURL+")")
	pf.StringVar(&c.token, "token", "", "bearer token (overrides config and "+config.EnvToken+")")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.placementCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig layers the persistent flags over the loaded configuration.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.API.URL = c.apiURL
	}
	if c.token != "" {
		cfg.API.Token = c.token
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newClient creates a backend client from the configuration.
func (c *CLI) newClient() (*backend.Client, error) {
	return backend.NewClient(c.Config.API.URL,
		backend.WithToken(c.Config.API.Token),
		backend.WithHTTPClient(&http.Client{Timeout: c.Config.API.Timeout}),
		backend.WithUserAgent(buildinfo.UserAgent()),
	)
}

// requireToken fails early when no token is configured, before any request
// is made.
func (c *CLI) requireToken() error {
	if c.Config.API.Token == "" {
		return errors.New(errors.ErrCodeUnauthorized,
			"no API token: set %s, add [api] token to the config file or pass --token", config.EnvToken)
	}
	return nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// newCache opens the configured artifact cache. A file cache whose directory
// cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Size)
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newSnapshotStore opens the configured snapshot store.
func (c *CLI) newSnapshotStore(ctx context.Context) (snapshot.Store, error) {
	cfg := c.Config.Snapshot
	if cfg.Backend == config.SnapshotMongo {
		return snapshot.NewMongoStore(ctx, snapshot.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
			Timeout:    c.Config.API.Timeout,
		})
	}
	return snapshot.NewFileStore(cfg.Dir)
}

// pipelineOptions seeds pipeline options from the configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	r := c.Config.Render
	return pipeline.Options{
		Layout:       c.Config.Layout,
		Formats:      append([]string(nil), r.Formats...),
		Renderer:     r.Renderer,
		Title:        r.Title,
		HidePackages: r.HidePackages,
		Scale:        r.Scale,
		Logger:       c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the artifact cache directory: the configured one, or the
// XDG standard (~/.cache/teamtree/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
