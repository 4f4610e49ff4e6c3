package config

import (
	"time"

	"github.com/matzehuels/claimgraph/pkg/style"
)

// Config is the complete claimgraph configuration.
type Config struct {
	API     APIConfig     `koanf:"api" toml:"api" yaml:"api"`
	Cache   CacheConfig   `koanf:"cache" toml:"cache" yaml:"cache"`
	Layout  LayoutConfig  `koanf:"layout" toml:"layout" yaml:"layout"`
	Explore ExploreConfig `koanf:"explore" toml:"explore" yaml:"explore"`
	Server  ServerConfig  `koanf:"server" toml:"server" yaml:"server"`
	Style   StyleConfig   `koanf:"style" toml:"style" yaml:"style"`
	Log     LogConfig     `koanf:"log" toml:"log" yaml:"log"`
}

// APIConfig points at the claim API.
type APIConfig struct {
	BaseURL   string        `koanf:"base_url" toml:"base_url" yaml:"base_url"`
	Token     string        `koanf:"token" toml:"token" yaml:"token"`
	Timeout   time.Duration `koanf:"timeout" toml:"timeout" yaml:"timeout"`
	Retries   int           `koanf:"retries" toml:"retries" yaml:"retries"`
	RateLimit float64       `koanf:"rate_limit" toml:"rate_limit" yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `koanf:"burst" toml:"burst" yaml:"burst"`
	PageSize  int           `koanf:"page_size" toml:"page_size" yaml:"page_size"`
}

// CacheConfig selects the payload cache backend.
type CacheConfig struct {
	Backend       string        `koanf:"backend" toml:"backend" yaml:"backend"` // null, file, redis, mongo
	Dir           string        `koanf:"dir" toml:"dir" yaml:"dir"`
	TTL           time.Duration `koanf:"ttl" toml:"ttl" yaml:"ttl"`
	RedisAddr     string        `koanf:"redis_addr" toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `koanf:"redis_password" toml:"redis_password" yaml:"redis_password"`
	RedisDB       int           `koanf:"redis_db" toml:"redis_db" yaml:"redis_db"`
	MongoURI      string        `koanf:"mongo_uri" toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string        `koanf:"mongo_database" toml:"mongo_database" yaml:"mongo_database"`
}

// LayoutConfig sets the default layout and its geometry.
type LayoutConfig struct {
	Default    string  `koanf:"default" toml:"default" yaml:"default"`
	Direction  string  `koanf:"direction" toml:"direction" yaml:"direction"`
	NodeWidth  float64 `koanf:"node_width" toml:"node_width" yaml:"node_width"`
	NodeHeight float64 `koanf:"node_height" toml:"node_height" yaml:"node_height"`
	NodeSep    float64 `koanf:"node_sep" toml:"node_sep" yaml:"node_sep"`
	RankSep    float64 `koanf:"rank_sep" toml:"rank_sep" yaml:"rank_sep"`
	Margin     float64 `koanf:"margin" toml:"margin" yaml:"margin"`

	// Engine selects who places concentric and force layouts: "graphviz"
	// or "builtin".
	Engine string `koanf:"engine" toml:"engine" yaml:"engine"`
}

// ExploreConfig bounds interactive exploration. Zero means unlimited.
type ExploreConfig struct {
	MaxNodes           int    `koanf:"max_nodes" toml:"max_nodes" yaml:"max_nodes"`
	MaxNewPerExpansion int    `koanf:"max_new_per_expansion" toml:"max_new_per_expansion" yaml:"max_new_per_expansion"`
	MaxInitialNodes    int    `koanf:"max_initial_nodes" toml:"max_initial_nodes" yaml:"max_initial_nodes"`
	MergePolicy        string `koanf:"merge_policy" toml:"merge_policy" yaml:"merge_policy"`
	Concurrency        int    `koanf:"concurrency" toml:"concurrency" yaml:"concurrency"`
}

// ServerConfig configures `claimgraph serve`.
type ServerConfig struct {
	Addr            string        `koanf:"addr" toml:"addr" yaml:"addr"`
	AllowAllOrigins bool          `koanf:"allow_all_origins" toml:"allow_all_origins" yaml:"allow_all_origins"`
	AllowedOrigins  []string      `koanf:"allowed_origins" toml:"allowed_origins" yaml:"allowed_origins"`
	ViewTTL         time.Duration `koanf:"view_ttl" toml:"view_ttl" yaml:"view_ttl"`
	MaxViews        int           `koanf:"max_views" toml:"max_views" yaml:"max_views"`
}

// StyleConfig overrides parts of the default theme.
type StyleConfig struct {
	Edges        map[string]style.EdgeStyle `koanf:"edges" toml:"edges" yaml:"edges"`
	EntityColors map[string]string          `koanf:"entity_colors" toml:"entity_colors" yaml:"entity_colors"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `koanf:"level" toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://live.linkedtrust.us",
			Timeout:   15 * time.Second,
			Retries:   3,
			RateLimit: 10,
			Burst:     5,
			PageSize:  5,
		},
		Cache: CacheConfig{
			Backend:       "file",
			TTL:           time.Hour,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "claimgraph",
		},
		Layout: LayoutConfig{
			Default:    "hierarchical",
			Direction:  "TB",
			NodeWidth:  172,
			NodeHeight: 36,
			NodeSep:    250,
			RankSep:    250,
			Margin:     250,
			Engine:     "graphviz",
		},
		Explore: ExploreConfig{
			MaxNodes:           30,
			MaxNewPerExpansion: 5,
			MaxInitialNodes:    7,
			MergePolicy:        "first-seen",
			Concurrency:        4,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			ViewTTL:  30 * time.Minute,
			MaxViews: 256,
		},
		Log: LogConfig{Level: "info"},
	}
}
