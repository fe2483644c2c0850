// Package pool manages the PHP-FPM pool that serves each host.
//
// A pool is named after the host's system account and lives in
// <pool_dir>/<account>.conf. It has no state of its own; it exists exactly
// as long as the host that owns it.
package pool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/logger"
	"github.com/ksyq12/hostctl/internal/template"
)

// Manager creates and removes pool configs and reloads PHP-FPM.
type Manager struct {
	cfg      config.PHP
	renderer *template.Renderer
	shell    *executor.Shell
}

// NewManager creates a pool manager for the given PHP settings.
func NewManager(cfg config.PHP, renderer *template.Renderer, exec executor.CommandExecutor) *Manager {
	return &Manager{
		cfg:      cfg,
		renderer: renderer,
		shell:    executor.NewShell(exec),
	}
}

// Path returns the pool config file for account.
func (m *Manager) Path(account string) string {
	return filepath.Join(m.cfg.PoolDir, account+".conf")
}

// Socket returns the unix socket the pool for account listens on.
func (m *Manager) Socket(account string) string {
	return fmt.Sprintf("/run/php/php%s-fpm-%s.sock", m.cfg.Version, account)
}

// Create renders the pool for account with its home at home, writes it and
// reloads PHP-FPM.
func (m *Manager) Create(ctx context.Context, account, home string) error {
	content, err := m.renderer.Pool(template.PoolData{
		Name:         account,
		User:         account,
		Group:        account,
		ListenOwner:  m.cfg.ListenOwner,
		Listen:       m.Socket(account),
		Home:         home,
		SessionPath:  filepath.Join(home, "sessions"),
		TempPath:     filepath.Join(home, "temp"),
		MaxChildren:  m.cfg.MaxChildren,
		StartServers: m.cfg.StartServers,
		MinSpare:     m.cfg.MinSpare,
		MaxSpare:     m.cfg.MaxSpare,
		MemoryLimit:  m.cfg.MemoryLimit,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.cfg.PoolDir, 0755); err != nil {
		return fmt.Errorf("failed to create pool directory: %w", err)
	}
	if err := os.WriteFile(m.Path(account), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write pool config: %w", err)
	}
	logger.Debug("wrote pool %s", m.Path(account))

	return m.Reload(ctx)
}

// Remove deletes the pool config for account and reloads PHP-FPM.
// A missing config is not an error.
func (m *Manager) Remove(ctx context.Context, account string) error {
	if err := os.Remove(m.Path(account)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pool config: %w", err)
	}
	return m.Reload(ctx)
}

// Reload asks PHP-FPM to pick up pool changes.
func (m *Manager) Reload(ctx context.Context) error {
	b := executor.Bindings{"service": m.cfg.Service}
	if _, err := m.shell.Run(ctx, "systemctl reload {{service}}", b); err == nil {
		return nil
	}

	logger.Debug("systemctl reload %s failed, trying service", m.cfg.Service)
	if _, err := m.shell.Run(ctx, "service {{service}} reload", b); err != nil {
		return herrors.WrapEntity(herrors.ErrCodeExternalCommand, m.cfg.Service, "failed to reload", err)
	}
	return nil
}
