package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when BRVM_CONFIG is unset.
const DefaultPath = "config/brvm.yaml"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the BRVM observatory.
type Config struct {
	Data      Data      `yaml:"data"`
	Storage   Storage   `yaml:"storage"`
	Redis     Redis     `yaml:"redis"`
	Server    Server    `yaml:"server"`
	Dashboard Dashboard `yaml:"dashboard"`
	Scraper   Scraper   `yaml:"scraper"`
	Logging   Logging   `yaml:"logging"`
}

// Data locates the snapshot the dashboard reads and the directory the
// scraper writes.
type Data struct {
	URL string `yaml:"url"` // http(s) URL, file:// URL or local path
	Dir string `yaml:"dir"`
}

// Storage selects the key/value backend for persisted UI state.
type Storage struct {
	Backend       string `yaml:"backend"` // sqlite, redis or file
	SQLitePath    string `yaml:"sqlite_path"`
	WatchlistFile string `yaml:"watchlist_file"`
}

// Redis holds connection settings for the redis backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Server holds network listener configuration for the static host.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Dashboard configures the terminal dashboard.
type Dashboard struct {
	RefreshInterval  time.Duration `yaml:"refresh_interval"`
	AutoRefresh      bool          `yaml:"auto_refresh"`
	MaxStocksInChart int           `yaml:"max_stocks_in_chart"`
	Currency         string        `yaml:"currency"`
	Locale           string        `yaml:"locale"`
	DateLayout       string        `yaml:"date_layout"`
	SearchDebounce   time.Duration `yaml:"search_debounce"`
	NotificationTTL  time.Duration `yaml:"notification_ttl"`
	LoadTimeout      time.Duration `yaml:"load_timeout"`
	ExportDir        string        `yaml:"export_dir"`
}

// Scraper configures the quotes page fetcher.
type Scraper struct {
	URL        string        `yaml:"url"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Archive    bool          `yaml:"archive"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: Data{
			URL: "data/stocks.json",
			Dir: "data",
		},
		Storage: Storage{
			Backend:       "sqlite",
			SQLitePath:    "brvm.db",
			WatchlistFile: "watchlist.json",
		},
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "brvm:",
		},
		Server: Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Dashboard: Dashboard{
			RefreshInterval:  5 * time.Minute,
			AutoRefresh:      true,
			MaxStocksInChart: 10,
			Currency:         "XOF",
			Locale:           "fr-FR",
			DateLayout:       "02/01/2006 15:04",
			SearchDebounce:   300 * time.Millisecond,
			NotificationTTL:  5 * time.Second,
			LoadTimeout:      30 * time.Second,
			ExportDir:        ".",
		},
		Scraper: Scraper{
			URL:        "https://www.brvm.org/fr/cours-actions/0",
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:    30 * time.Second,
			Retries:    3,
			RetryDelay: 2 * time.Second,
			Archive:    true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the configuration file path from BRVM_CONFIG or DefaultPath.
func Path() string {
	if v := os.Getenv("BRVM_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads the YAML configuration file at the given path over the defaults
// and then applies environment variable overrides. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults restores defaults for fields explicitly zeroed in the file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Data.URL == "" {
		cfg.Data.URL = def.Data.URL
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = def.Data.Dir
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = def.Storage.Backend
	}
	if cfg.Dashboard.RefreshInterval <= 0 {
		cfg.Dashboard.RefreshInterval = def.Dashboard.RefreshInterval
	}
	if cfg.Dashboard.MaxStocksInChart <= 0 {
		cfg.Dashboard.MaxStocksInChart = def.Dashboard.MaxStocksInChart
	}
	if cfg.Dashboard.Currency == "" {
		cfg.Dashboard.Currency = def.Dashboard.Currency
	}
	if cfg.Dashboard.Locale == "" {
		cfg.Dashboard.Locale = def.Dashboard.Locale
	}
	if cfg.Dashboard.SearchDebounce <= 0 {
		cfg.Dashboard.SearchDebounce = def.Dashboard.SearchDebounce
	}
	if cfg.Dashboard.NotificationTTL <= 0 {
		cfg.Dashboard.NotificationTTL = def.Dashboard.NotificationTTL
	}
	if cfg.Dashboard.LoadTimeout <= 0 {
		cfg.Dashboard.LoadTimeout = def.Dashboard.LoadTimeout
	}
	if cfg.Scraper.Retries <= 0 {
		cfg.Scraper.Retries = 1
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BRVM_DATA_URL"); v != "" {
		cfg.Data.URL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("WATCHLIST_FILE"); v != "" {
		cfg.Storage.WatchlistFile = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("BRVM_EXPORT_DIR"); v != "" {
		cfg.Dashboard.ExportDir = v
	}
	if v := os.Getenv("BRVM_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.RefreshInterval = d
		}
	}

	if v := os.Getenv("BRVM_SCRAPE_URL"); v != "" {
		cfg.Scraper.URL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Addr returns the host:port the static host listens on.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
