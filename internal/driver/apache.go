package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/logger"
)

// ApacheDriver implements the Driver interface for Apache2
type ApacheDriver struct {
	paths   Paths
	service string
	ctl     string
	shell   *executor.Shell
}

// NewApache creates an Apache driver from the apache config section.
// Commands run through exec.
func NewApache(cfg config.Apache, exec executor.CommandExecutor) *ApacheDriver {
	service := cfg.Service
	if service == "" {
		service = "apache2"
	}
	// Debian ships apache2ctl, everything else apachectl
	ctl := "apachectl"
	if service == "apache2" {
		ctl = "apache2ctl"
	}
	return &ApacheDriver{
		paths: Paths{
			Available: cfg.Available,
			Enabled:   cfg.Enabled,
		},
		service: service,
		ctl:     ctl,
		shell:   executor.NewShell(exec),
	}
}

// Name returns the driver name
func (a *ApacheDriver) Name() string {
	return "apache"
}

// Paths returns the config paths
func (a *ApacheDriver) Paths() Paths {
	return a.paths
}

// configFileName returns the config file name with .conf extension
func (a *ApacheDriver) configFileName(name string) string {
	return name + ".conf"
}

// Install writes a vhost config file to sites-available
func (a *ApacheDriver) Install(name, content string) error {
	if err := os.MkdirAll(a.paths.Available, 0755); err != nil {
		return fmt.Errorf("failed to create sites-available directory: %w", err)
	}

	configPath := filepath.Join(a.paths.Available, a.configFileName(name))
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logger.Debug("installed vhost %s at %s", name, configPath)
	return nil
}

// Uninstall deletes a vhost config from sites-available
func (a *ApacheDriver) Uninstall(name string) error {
	configPath := filepath.Join(a.paths.Available, a.configFileName(name))
	if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}
	return nil
}

// Enable activates a vhost by creating a symlink
func (a *ApacheDriver) Enable(name string) error {
	source := filepath.Join(a.paths.Available, a.configFileName(name))
	target := filepath.Join(a.paths.Enabled, a.configFileName(name))

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return herrors.NotFound("vhost", name)
	}

	if info, err := os.Lstat(target); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return fmt.Errorf("vhost %s is enabled by a regular file, refusing to replace it", name)
		}
		return nil
	}

	if err := os.MkdirAll(a.paths.Enabled, 0755); err != nil {
		return fmt.Errorf("failed to create sites-enabled directory: %w", err)
	}
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("failed to enable vhost: %w", err)
	}

	return nil
}

// Disable deactivates a vhost by removing the symlink
func (a *ApacheDriver) Disable(name string) error {
	target := filepath.Join(a.paths.Enabled, a.configFileName(name))

	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check vhost status: %w", err)
	}

	// Verify it's a symlink
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("vhost %s is not a symlink, refusing to remove", name)
	}

	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to disable vhost: %w", err)
	}

	return nil
}

// List returns all vhost names from sites-available
func (a *ApacheDriver) List() ([]string, error) {
	entries, err := os.ReadDir(a.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read sites-available: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		// Only include .conf files (not directories or hidden files)
		if !entry.IsDir() && !strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".conf") {
			names = append(names, strings.TrimSuffix(name, ".conf"))
		}
	}

	return names, nil
}

// IsEnabled checks if a vhost is enabled
func (a *ApacheDriver) IsEnabled(name string) (bool, error) {
	target := filepath.Join(a.paths.Enabled, a.configFileName(name))
	_, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check vhost status: %w", err)
	}
	return true, nil
}

// Test validates the apache config syntax
func (a *ApacheDriver) Test(ctx context.Context) error {
	_, err := a.shell.Run(ctx, "{{ctl}} configtest", executor.Bindings{"ctl": a.ctl})
	return err
}

// Reload reloads apache to apply changes
func (a *ApacheDriver) Reload(ctx context.Context) error {
	_, err := a.shell.Run(ctx, "systemctl reload {{service}}", executor.Bindings{"service": a.service})
	if err == nil {
		return nil
	}

	// Try a graceful restart as fallback
	logger.Debug("systemctl reload %s failed, trying %s graceful", a.service, a.ctl)
	if _, gErr := a.shell.Run(ctx, "{{ctl}} graceful", executor.Bindings{"ctl": a.ctl}); gErr != nil {
		return herrors.WrapEntity(herrors.ErrCodeExternalCommand, a.service, "failed to reload", gErr)
	}
	return nil
}
