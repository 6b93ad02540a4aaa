// Package config loads ontolayout settings from a TOML file.
//
// A configuration file sets defaults for layout requests, selects the
// solution cache backend, and configures the HTTP server and the diagram
// store. Command-line flags and request fields override file values.
//
//	[layout]
//	group_generalizations = true
//	split_boundary_edges = true
//
//	[anchors]
//	mode = "merge-with-original-anchors"
//
//	[solver]
//	name = "graphviz"
//	timeout = "30s"
//	[solver.params]
//	engine = "neato"
//
//	[cache]
//	type = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
//
//	[store]
//	uri = "mongodb://localhost:27017"
//	database = "ontolayout"
//	collection = "diagrams"
package config

import (
	"context"
	"io"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/cache"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
)

// Cache backend types.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// CacheTypes lists the valid [cache] types.
var CacheTypes = []string{CacheNone, CacheFile, CacheRedis}

// Config is the root of a configuration file.
type Config struct {
	Layout  LayoutConfig `toml:"layout"`
	Anchors AnchorConfig `toml:"anchors"`
	Solver  SolverConfig `toml:"solver"`
	Cache   CacheConfig  `toml:"cache"`
	Server  ServerConfig `toml:"server"`
	Store   StoreConfig  `toml:"store"`
}

// LayoutConfig holds build defaults.
type LayoutConfig struct {
	GroupGeneralizations bool  `toml:"group_generalizations"`
	SplitBoundaryEdges   *bool `toml:"split_boundary_edges"`
	AllOutsiders         bool  `toml:"all_outsiders"`
	FallbackToOriginal   bool  `toml:"fallback_to_original"`
}

// AnchorConfig holds the default anchor override.
type AnchorConfig struct {
	Mode        anchor.Mode `toml:"mode"`
	Anchored    []string    `toml:"anchored"`
	NotAnchored []string    `toml:"not_anchored"`
}

// SolverConfig selects the layout solver.
type SolverConfig struct {
	Name    string         `toml:"name"`
	Timeout time.Duration  `toml:"timeout"`
	Params  map[string]any `toml:"params"`
}

// CacheConfig selects the solution cache backend.
type CacheConfig struct {
	Type      string        `toml:"type"`
	Dir       string        `toml:"dir"` // File cache directory; empty uses cache.DefaultDir
	RedisURL  string        `toml:"redis_url"`
	RedisAddr string        `toml:"redis_addr"`
	RedisDB   int           `toml:"redis_db"`
	Prefix    string        `toml:"prefix"`
	TTL       time.Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"` // Request body limit; zero means none
}

// StoreConfig configures the MongoDB diagram store.
type StoreConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Anchors: AnchorConfig{Mode: anchor.DefaultMode},
		Solver:  SolverConfig{Name: pipeline.DefaultSolver, Timeout: 30 * time.Second},
		Cache:   CacheConfig{Type: CacheFile, TTL: cache.TTLSolution},
		Server:  ServerConfig{Addr: ":8080", RequestTimeout: time.Minute, MaxBodyBytes: 32 << 20},
		Store:   StoreConfig{Database: "ontolayout", Collection: "diagrams"},
	}
}

// Load reads a TOML file over Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(string(data))
}

// Parse decodes TOML text over Default and validates the result.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := anchor.ParseMode(string(c.Anchors.Mode)); err != nil {
		return err
	}
	if !slices.Contains(CacheTypes, c.Cache.Type) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache type %q (must be one of %v)", c.Cache.Type, CacheTypes)
	}
	if c.Cache.RedisURL != "" {
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return err
		}
	}
	if c.Store.URI != "" {
		if err := errors.ValidateURL(c.Store.URI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
	}
	if c.Solver.Timeout < 0 || c.Cache.TTL < 0 || c.Server.RequestTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_body_bytes must not be negative")
	}
	return nil
}

// ApplyTo fills the fields of opts that are still at their zero value.
func (c Config) ApplyTo(opts *pipeline.Options) {
	if opts.AnchorMode == "" {
		opts.AnchorMode = c.Anchors.Mode
	}
	if len(opts.Anchored) == 0 {
		opts.Anchored = c.Anchors.Anchored
	}
	if len(opts.NotAnchored) == 0 {
		opts.NotAnchored = c.Anchors.NotAnchored
	}
	if opts.Solver == "" {
		opts.Solver = c.Solver.Name
	}
	if opts.SolverParams == nil && c.Solver.Params != nil {
		opts.SolverParams = c.Solver.Params
	}
	if opts.SplitBoundaryEdges == nil {
		opts.SplitBoundaryEdges = c.Layout.SplitBoundaryEdges
	}
	opts.GroupGeneralizations = opts.GroupGeneralizations || c.Layout.GroupGeneralizations
	opts.AllOutsiders = opts.AllOutsiders || c.Layout.AllOutsiders
	opts.FallbackToOriginal = opts.FallbackToOriginal || c.Layout.FallbackToOriginal
}

// OpenCache creates the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Type {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			URL:    c.Cache.RedisURL,
			Addr:   c.Cache.RedisAddr,
			DB:     c.Cache.RedisDB,
			Prefix: c.Cache.Prefix,
		})
	default:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve cache directory")
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// Keyer returns the cache keyer, scoped by the configured prefix.
func (c Config) Keyer() cache.Keyer {
	k := cache.NewDefaultKeyer()
	if c.Cache.Prefix != "" && c.Cache.Type != CacheRedis {
		k = cache.NewScopedKeyer(k, c.Cache.Prefix)
	}
	return k
}
