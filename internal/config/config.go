package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ksyq12/hostctl/internal/platform"
)

// DefaultPath is the system-wide config file location.
const DefaultPath = "/etc/hostctl/config.yaml"

// EnvPrefix prefixes environment overrides, e.g. HOSTCTL_STORE_DRIVER.
const EnvPrefix = "HOSTCTL"

// Store driver names
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config represents the application configuration
type Config struct {
	Paths  Paths  `mapstructure:"paths" yaml:"paths" json:"paths"`
	Apache Apache `mapstructure:"apache" yaml:"apache" json:"apache"`
	PHP    PHP    `mapstructure:"php" yaml:"php" json:"php"`
	Store  Store  `mapstructure:"store" yaml:"store" json:"store"`
	Log    Log    `mapstructure:"log" yaml:"log" json:"log"`
}

// Paths holds the filesystem conventions for clients and hosts.
type Paths struct {
	WWW    string `mapstructure:"www" yaml:"www" json:"www"`          // client web roots: <www>/<account>
	VHost  string `mapstructure:"vhost" yaml:"vhost" json:"vhost"`    // client account homes: <vhost>/<account>
	Backup string `mapstructure:"backup" yaml:"backup" json:"backup"` // removed accounts: <backup>/<account>
	Passwd string `mapstructure:"passwd" yaml:"passwd" json:"passwd"` // account database consulted for free names
}

// Apache holds the site registry and service settings.
type Apache struct {
	Available string `mapstructure:"available" yaml:"available" json:"available"`
	Enabled   string `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Service   string `mapstructure:"service" yaml:"service" json:"service"`
	Port      int    `mapstructure:"port" yaml:"port" json:"port"`
}

// PHP holds the FPM pool settings applied to every host.
type PHP struct {
	Version      string `mapstructure:"version" yaml:"version" json:"version"`
	PoolDir      string `mapstructure:"pool_dir" yaml:"pool_dir" json:"pool_dir"`
	Service      string `mapstructure:"service" yaml:"service" json:"service"`
	MaxChildren  int    `mapstructure:"max_children" yaml:"max_children" json:"max_children"`
	StartServers int    `mapstructure:"start_servers" yaml:"start_servers" json:"start_servers"`
	MinSpare     int    `mapstructure:"min_spare" yaml:"min_spare" json:"min_spare"`
	MaxSpare     int    `mapstructure:"max_spare" yaml:"max_spare" json:"max_spare"`
	MemoryLimit  string `mapstructure:"memory_limit" yaml:"memory_limit" json:"memory_limit"`
	ListenOwner  string `mapstructure:"listen_owner" yaml:"listen_owner" json:"listen_owner"` // web server user connecting to pool sockets
}

// Store selects and configures the record backend.
type Store struct {
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`
	Path   string `mapstructure:"path" yaml:"path" json:"path"`
	Redis  Redis  `mapstructure:"redis" yaml:"redis" json:"redis"`
}

// Redis configures the key-value backend.
type Redis struct {
	Addr     string `mapstructure:"addr" yaml:"addr" json:"addr"`
	Username string `mapstructure:"username" yaml:"username,omitempty" json:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty" json:"password,omitempty"`
	DB       int    `mapstructure:"db" yaml:"db" json:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
}

// Log controls diagnostic output.
type Log struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
}

// New creates a new Config with Debian defaults
func New() *Config {
	return &Config{
		Paths: Paths{
			WWW:    "/var/www",
			VHost:  "/var/www/vhost",
			Backup: "/var/www/backup",
			Passwd: "/etc/passwd",
		},
		Apache: Apache{
			Available: "/etc/apache2/sites-available",
			Enabled:   "/etc/apache2/sites-enabled",
			Service:   "apache2",
			Port:      80,
		},
		PHP: PHP{
			Version:      "8.2",
			MaxChildren:  5,
			StartServers: 2,
			MinSpare:     1,
			MaxSpare:     3,
			MemoryLimit:  "128M",
			ListenOwner:  "www-data",
		},
		Store: Store{
			Driver: StoreSQLite,
			Path:   "/var/lib/hostctl/hostctl.db",
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "hostctl",
			},
		},
	}
}

// ForPlatform returns defaults adjusted to a detected platform layout.
func ForPlatform(p *platform.PlatformPaths) *Config {
	cfg := New()
	if p == nil {
		return cfg
	}
	if p.Apache.Available != "" {
		cfg.Apache.Available = p.Apache.Available
		cfg.Apache.Enabled = p.Apache.Enabled
	}
	if p.ApacheService != "" {
		cfg.Apache.Service = p.ApacheService
	}
	if p.WebUser != "" {
		cfg.PHP.ListenOwner = p.WebUser
	}
	if p.PHPVersion != "" {
		cfg.PHP.Version = p.PHPVersion
	}
	cfg.PHP.PoolDir = p.PoolDir
	cfg.PHP.Service = p.PHPService
	return cfg
}

// Path returns the config file to read: explicit, then $HOSTCTL_CONFIG, then DefaultPath.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the config file at path on top of defaults and applies
// HOSTCTL_* environment overrides. A missing file yields the defaults.
func Load(path string, defaults *Config) (*Config, error) {
	if defaults == nil {
		defaults = New()
	}

	v := viper.New()
	setDefaults(v, defaults)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Fill()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("paths.www", d.Paths.WWW)
	v.SetDefault("paths.vhost", d.Paths.VHost)
	v.SetDefault("paths.backup", d.Paths.Backup)
	v.SetDefault("paths.passwd", d.Paths.Passwd)

	v.SetDefault("apache.available", d.Apache.Available)
	v.SetDefault("apache.enabled", d.Apache.Enabled)
	v.SetDefault("apache.service", d.Apache.Service)
	v.SetDefault("apache.port", d.Apache.Port)

	v.SetDefault("php.version", d.PHP.Version)
	v.SetDefault("php.pool_dir", d.PHP.PoolDir)
	v.SetDefault("php.service", d.PHP.Service)
	v.SetDefault("php.max_children", d.PHP.MaxChildren)
	v.SetDefault("php.start_servers", d.PHP.StartServers)
	v.SetDefault("php.min_spare", d.PHP.MinSpare)
	v.SetDefault("php.max_spare", d.PHP.MaxSpare)
	v.SetDefault("php.memory_limit", d.PHP.MemoryLimit)
	v.SetDefault("php.listen_owner", d.PHP.ListenOwner)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.username", d.Store.Redis.Username)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", d.Store.Redis.Prefix)

	v.SetDefault("log.verbose", d.Log.Verbose)
}

// Fill derives the PHP-FPM pool directory and service from the version
// when they are not set explicitly. Load calls it.
func (c *Config) Fill() {
	if c.PHP.PoolDir == "" {
		c.PHP.PoolDir = filepath.Join("/etc/php", c.PHP.Version, "fpm/pool.d")
	}
	if c.PHP.Service == "" {
		c.PHP.Service = "php" + c.PHP.Version + "-fpm"
	}
}

// Validate checks the settings the provisioning pipeline relies on.
func (c *Config) Validate() error {
	abs := map[string]string{
		"paths.www":        c.Paths.WWW,
		"paths.vhost":      c.Paths.VHost,
		"paths.backup":     c.Paths.Backup,
		"apache.available": c.Apache.Available,
		"apache.enabled":   c.Apache.Enabled,
		"php.pool_dir":     c.PHP.PoolDir,
	}
	for key, p := range abs {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("%s must be an absolute path, got %q", key, p)
		}
	}
	if c.Apache.Port <= 0 || c.Apache.Port > 65535 {
		return fmt.Errorf("apache.port out of range: %d", c.Apache.Port)
	}
	switch c.Store.Driver {
	case StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (available: %s, %s)", c.Store.Driver, StoreSQLite, StoreRedis)
	}
	return nil
}

// Save writes the config to path as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// may hold the redis password
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
