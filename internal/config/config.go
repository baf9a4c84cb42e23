package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for shelfwatch.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"  yaml:"source"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Run     RunConfig     `mapstructure:"run"     yaml:"run"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SourceConfig describes the target site.
type SourceConfig struct {
	// ProductURLTemplate builds a product page URL from a SKU (one %s verb).
	ProductURLTemplate string `mapstructure:"product_url_template" yaml:"product_url_template"`

	// StoreURLTemplate builds a store page URL from a store id (one %s verb).
	// Visiting it lets the site bind the session to that location.
	StoreURLTemplate string `mapstructure:"store_url_template" yaml:"store_url_template"`

	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`
}

// FetcherConfig controls the page retrieval layer.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"` // http or browser
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	ProxyURL        string        `mapstructure:"proxy_url"         yaml:"proxy_url"`
	MaxRetries      int           `mapstructure:"max_retries"       yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"       yaml:"retry_delay"`
}

// ExtractConfig names the payload markers. They are configuration, not
// process-wide constants, so tests run against fixtures without touching
// shared state.
type ExtractConfig struct {
	// ScriptID is the id of the dedicated structured-data script element.
	ScriptID string `mapstructure:"script_id" yaml:"script_id"`

	// StateMarker prefixes the legacy inline global-state assignment.
	StateMarker string `mapstructure:"state_marker" yaml:"state_marker"`
}

// RunConfig controls one sweep.
type RunConfig struct {
	SKUFile   string        `mapstructure:"sku_file"   yaml:"sku_file"`
	StoreFile string        `mapstructure:"store_file" yaml:"store_file"`

	// Throttle is the fixed delay between product fetches.
	Throttle time.Duration `mapstructure:"throttle" yaml:"throttle"`
}

// StorageConfig controls snapshot output.
type StorageConfig struct {
	Type      string `mapstructure:"type"       yaml:"type"` // file, mongodb, multi
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			ProductURLTemplate: "https://www.walmart.com/ip/%s",
			StoreURLTemplate:   "https://www.walmart.com/store/%s",
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			MaxRetries:      2,
			RetryDelay:      2 * time.Second,
		},
		Extract: ExtractConfig{
			ScriptID:    "__NEXT_DATA__",
			StateMarker: "window.__WML_REDUX_INITIAL_STATE__",
		},
		Run: RunConfig{
			SKUFile:   "input/skus.txt",
			StoreFile: "input/stores.json",
			Throttle:  1 * time.Second,
		},
		Storage: StorageConfig{
			Type:            "file",
			OutputDir:       "./snapshots",
			MongoDatabase:   "shelfwatch",
			MongoCollection: "snapshots",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
