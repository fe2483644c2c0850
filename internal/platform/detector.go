// Package platform provides platform-specific path detection for the Apache
// site registry and the PHP-FPM pool directory.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// PathConfig contains the site registry paths for Apache.
type PathConfig struct {
	Available string
	Enabled   string
}

// PlatformPaths contains the detected layout of the hosting stack.
type PlatformPaths struct {
	Apache        PathConfig
	ApacheService string // service reloaded after vhost changes
	WebUser       string // account the web server runs as
	PHPVersion    string // newest PHP-FPM found, empty if none
	PoolDir       string // PHP-FPM pool.d directory for PHPVersion
	PHPService    string // service reloaded after pool changes
}

// DetectPaths returns platform-specific default paths.
func DetectPaths() (*PlatformPaths, error) {
	switch runtime.GOOS {
	case "darwin":
		return detectDarwinPaths("")
	case "linux":
		return detectLinuxPaths("")
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectDarwinPaths detects Homebrew installations under root.
func detectDarwinPaths(root string) (*PlatformPaths, error) {
	for _, prefix := range []string{"/opt/homebrew", "/usr/local"} {
		if !pathExists(filepath.Join(root, prefix, "etc")) {
			continue
		}
		etc := filepath.Join(prefix, "etc")
		p := &PlatformPaths{
			Apache: PathConfig{
				Available: filepath.Join(etc, "httpd/extra/vhosts"),
				Enabled:   filepath.Join(etc, "httpd/extra/vhosts-enabled"),
			},
			ApacheService: "httpd",
			WebUser:       "_www",
		}
		if v := newestVersion(root, filepath.Join(etc, "php")); v != "" {
			p.PHPVersion = v
			p.PoolDir = filepath.Join(etc, "php", v, "php-fpm.d")
			p.PHPService = "php@" + v
		}
		return p, nil
	}

	return nil, fmt.Errorf("homebrew installation not found (checked /opt/homebrew and /usr/local)")
}

// detectLinuxPaths detects Debian/Ubuntu and RHEL layouts under root.
func detectLinuxPaths(root string) (*PlatformPaths, error) {
	// Debian/Ubuntu: a2ensite-style registry and versioned FPM directories
	if pathExists(filepath.Join(root, "/etc/apache2")) {
		p := &PlatformPaths{
			Apache: PathConfig{
				Available: "/etc/apache2/sites-available",
				Enabled:   "/etc/apache2/sites-enabled",
			},
			ApacheService: "apache2",
			WebUser:       "www-data",
		}
		if v := newestVersion(root, "/etc/php"); v != "" {
			p.PHPVersion = v
			p.PoolDir = filepath.Join("/etc/php", v, "fpm/pool.d")
			p.PHPService = "php" + v + "-fpm"
		}
		return p, nil
	}

	// RHEL/CentOS: flat conf.d, unversioned php-fpm
	if pathExists(filepath.Join(root, "/etc/httpd")) {
		return &PlatformPaths{
			Apache: PathConfig{
				Available: "/etc/httpd/sites-available",
				Enabled:   "/etc/httpd/conf.d",
			},
			ApacheService: "httpd",
			WebUser:       "apache",
			PoolDir:       "/etc/php-fpm.d",
			PHPService:    "php-fpm",
		}, nil
	}

	return nil, fmt.Errorf("apache configuration not found (checked /etc/apache2, /etc/httpd)")
}

// newestVersion returns the highest "X.Y" directory name under dir.
func newestVersion(root, dir string) string {
	entries, err := os.ReadDir(filepath.Join(root, dir))
	if err != nil {
		return ""
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() && isVersion(e.Name()) {
			versions = append(versions, e.Name())
		}
	}
	if len(versions) == 0 {
		return ""
	}

	sort.Slice(versions, func(i, j int) bool {
		return versionLess(versions[i], versions[j])
	})
	return versions[len(versions)-1]
}

func isVersion(s string) bool {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return false
	}
	_, err1 := strconv.Atoi(major)
	_, err2 := strconv.Atoi(minor)
	return err1 == nil && err2 == nil
}

func versionLess(a, b string) bool {
	amaj, amin, _ := strings.Cut(a, ".")
	bmaj, bmin, _ := strings.Cut(b, ".")
	ai, _ := strconv.Atoi(amaj)
	bi, _ := strconv.Atoi(bmaj)
	if ai != bi {
		return ai < bi
	}
	ai, _ = strconv.Atoi(amin)
	bi, _ = strconv.Atoi(bmin)
	return ai < bi
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
