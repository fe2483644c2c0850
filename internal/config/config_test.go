package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/hostctl/internal/platform"
)

func TestConfig(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "hostctl", "config.yaml")

	t.Run("New", func(t *testing.T) {
		cfg := New()
		if cfg.Paths.WWW != "/var/www" {
			t.Errorf("expected /var/www, got %s", cfg.Paths.WWW)
		}
		if cfg.Apache.Port != 80 {
			t.Errorf("expected port 80, got %d", cfg.Apache.Port)
		}
		if cfg.Store.Driver != StoreSQLite {
			t.Errorf("expected sqlite store, got %s", cfg.Store.Driver)
		}
	})

	t.Run("LoadNonexistent", func(t *testing.T) {
		cfg, err := Load(path, nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Paths.Backup != "/var/www/backup" {
			t.Errorf("expected default backup path, got %s", cfg.Paths.Backup)
		}
		// derived from the php version
		if cfg.PHP.PoolDir != "/etc/php/8.2/fpm/pool.d" {
			t.Errorf("unexpected pool dir %s", cfg.PHP.PoolDir)
		}
		if cfg.PHP.Service != "php8.2-fpm" {
			t.Errorf("unexpected php service %s", cfg.PHP.Service)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		cfg := New()
		cfg.Paths.WWW = "/srv/www"
		cfg.PHP.Version = "8.3"
		cfg.PHP.MaxChildren = 12
		cfg.Store.Driver = StoreRedis
		cfg.Store.Redis.Addr = "10.0.0.5:6379"

		if err := cfg.Save(path); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file was not created: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}

		loaded, err := Load(path, nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Paths.WWW != "/srv/www" {
			t.Errorf("expected /srv/www, got %s", loaded.Paths.WWW)
		}
		if loaded.PHP.MaxChildren != 12 {
			t.Errorf("expected 12 children, got %d", loaded.PHP.MaxChildren)
		}
		if loaded.Store.Driver != StoreRedis || loaded.Store.Redis.Addr != "10.0.0.5:6379" {
			t.Errorf("unexpected store settings %+v", loaded.Store)
		}
		// untouched keys keep defaults
		if loaded.Paths.VHost != "/var/www/vhost" {
			t.Errorf("expected default vhost path, got %s", loaded.Paths.VHost)
		}
	})

	t.Run("PartialFile", func(t *testing.T) {
		partial := filepath.Join(tempDir, "partial.yaml")
		content := "apache:\n  port: 8080\nphp:\n  version: \"7.4\"\n"
		if err := os.WriteFile(partial, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(partial, nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Apache.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cfg.Apache.Port)
		}
		if cfg.PHP.PoolDir != "/etc/php/7.4/fpm/pool.d" {
			t.Errorf("pool dir should follow version, got %s", cfg.PHP.PoolDir)
		}
		if cfg.Apache.Available != "/etc/apache2/sites-available" {
			t.Errorf("expected default available path, got %s", cfg.Apache.Available)
		}
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("HOSTCTL_PATHS_BACKUP", "/data/backup")
		t.Setenv("HOSTCTL_APACHE_PORT", "8081")

		cfg, err := Load(filepath.Join(tempDir, "missing.yaml"), nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Paths.Backup != "/data/backup" {
			t.Errorf("expected env override, got %s", cfg.Paths.Backup)
		}
		if cfg.Apache.Port != 8081 {
			t.Errorf("expected env port override, got %d", cfg.Apache.Port)
		}
	})

	t.Run("MalformedFile", func(t *testing.T) {
		bad := filepath.Join(tempDir, "bad.yaml")
		if err := os.WriteFile(bad, []byte("paths: [unterminated\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(bad, nil); err == nil {
			t.Error("expected error for malformed config")
		}
	})

	t.Run("InvalidFile", func(t *testing.T) {
		invalid := filepath.Join(tempDir, "invalid.yaml")
		if err := os.WriteFile(invalid, []byte("store:\n  driver: etcd\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(invalid, nil)
		if err == nil || !strings.Contains(err.Error(), "unknown store driver") {
			t.Errorf("expected unknown store driver error, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) { c.Fill() }, ""},
		{"relative www", func(c *Config) { c.Fill(); c.Paths.WWW = "www" }, "paths.www"},
		{"bad port", func(c *Config) { c.Fill(); c.Apache.Port = 0 }, "apache.port"},
		{"sqlite without path", func(c *Config) { c.Fill(); c.Store.Path = "" }, "store.path"},
		{"redis without addr", func(c *Config) {
			c.Fill()
			c.Store.Driver = StoreRedis
			c.Store.Redis.Addr = ""
		}, "store.redis.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestForPlatform(t *testing.T) {
	cfg := ForPlatform(&platform.PlatformPaths{
		Apache:        platform.PathConfig{Available: "/etc/httpd/sites-available", Enabled: "/etc/httpd/conf.d"},
		ApacheService: "httpd",
		WebUser:       "apache",
		PoolDir:       "/etc/php-fpm.d",
		PHPService:    "php-fpm",
	})

	if cfg.Apache.Enabled != "/etc/httpd/conf.d" || cfg.Apache.Service != "httpd" {
		t.Errorf("apache settings not applied: %+v", cfg.Apache)
	}
	if cfg.PHP.PoolDir != "/etc/php-fpm.d" || cfg.PHP.Service != "php-fpm" {
		t.Errorf("php settings not applied: %+v", cfg.PHP)
	}
	if cfg.PHP.ListenOwner != "apache" {
		t.Errorf("expected listen owner apache, got %s", cfg.PHP.ListenOwner)
	}
	if cfg.PHP.Version != "8.2" {
		t.Errorf("version should stay default when undetected, got %s", cfg.PHP.Version)
	}

	if got := ForPlatform(nil); got.Apache.Service != "apache2" {
		t.Errorf("nil platform should give defaults, got %s", got.Apache.Service)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("HOSTCTL_CONFIG", "")
	if got := Path(""); got != DefaultPath {
		t.Errorf("expected default path, got %s", got)
	}

	t.Setenv("HOSTCTL_CONFIG", "/tmp/env.yaml")
	if got := Path(""); got != "/tmp/env.yaml" {
		t.Errorf("expected env path, got %s", got)
	}
	if got := Path("/tmp/flag.yaml"); got != "/tmp/flag.yaml" {
		t.Errorf("explicit path should win, got %s", got)
	}
}
