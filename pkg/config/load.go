package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/matzehuels/claimgraph/pkg/cache"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/store"
	"github.com/matzehuels/claimgraph/pkg/style"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "CLAIMGRAPH_"

// DefaultPath returns the per-user config file location, or "" when the
// platform has no config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "claimgraph", "config.toml")
}

// Load builds a Config from defaults, the file at path (skipped when path
// is empty or missing) and CLAIMGRAPH_* environment variables, then
// validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			parser, err := parserFor(path)
			if err != nil {
				return nil, err
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps CLAIMGRAPH_API__BASE_URL to api.base_url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.API.PageSize < 1 {
		return fmt.Errorf("api.page_size must be at least 1")
	}

	switch c.Cache.Backend {
	case cache.BackendNull, cache.BackendFile, cache.BackendRedis, cache.BackendMongo:
	default:
		return fmt.Errorf("cache.backend must be null, file, redis or mongo, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Backend == cache.BackendMongo && c.Cache.MongoURI == "" {
		return fmt.Errorf("cache.mongo_uri is required for the mongo backend")
	}

	if _, err := layout.Parse(c.Layout.Default); err != nil {
		return fmt.Errorf("layout.default: %w", err)
	}
	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		return fmt.Errorf("layout.direction: %w", err)
	}
	switch c.Layout.Engine {
	case "graphviz", "builtin":
	default:
		return fmt.Errorf("layout.engine must be graphviz or builtin, got %q", c.Layout.Engine)
	}

	if c.Explore.MaxNodes < 0 || c.Explore.MaxNewPerExpansion < 0 || c.Explore.MaxInitialNodes < 0 {
		return fmt.Errorf("explore limits must not be negative")
	}
	if c.Explore.Concurrency < 1 {
		return fmt.Errorf("explore.concurrency must be at least 1")
	}
	if _, err := store.ParseMergePolicy(c.Explore.MergePolicy); err != nil {
		return fmt.Errorf("explore.merge_policy: %w", err)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Theme returns the default theme with the configured overrides applied.
func (c *Config) Theme() style.Theme {
	t := style.DefaultTheme()
	if len(c.Style.Edges) > 0 {
		t = t.WithEdges(c.Style.Edges)
	}
	if len(c.Style.EntityColors) > 0 {
		t = t.WithEntityColors(c.Style.EntityColors)
	}
	return t
}

// CacheOptions converts the cache section for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoConfig{
			URI:      c.Cache.MongoURI,
			Database: c.Cache.MongoDatabase,
		},
	}
}

// LayoutOptions converts the layout section for [layout.New]. The engine
// is left nil; callers attach a Graphviz engine when Layout.Engine asks
// for one.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		NodeWidth:  c.Layout.NodeWidth,
		NodeHeight: c.Layout.NodeHeight,
		NodeSep:    c.Layout.NodeSep,
		RankSep:    c.Layout.RankSep,
		Margin:     c.Layout.Margin,
	}
}

// MergePolicy returns the parsed explore.merge_policy.
func (c *Config) MergePolicy() store.MergePolicy {
	p, _ := store.ParseMergePolicy(c.Explore.MergePolicy)
	return p
}

// LogLevel returns the parsed log.level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
