package pool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/template"
)

func newTestManager(t *testing.T, exec executor.CommandExecutor) (*Manager, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "pool.d")
	cfg := config.New().PHP
	cfg.PoolDir = dir
	cfg.Service = "php8.2-fpm"
	return NewManager(cfg, template.NewRenderer(), exec), dir
}

func TestCreate(t *testing.T) {
	mock := &executor.MockExecutor{}
	m, dir := newTestManager(t, mock)

	if err := m.Create(context.Background(), "shopacme", "/var/www/acme/shop"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "shopacme.conf"))
	if err != nil {
		t.Fatalf("pool file not written: %v", err)
	}
	for _, expected := range []string{
		"[shopacme]",
		"listen = /run/php/php8.2-fpm-shopacme.sock",
		"listen.owner = www-data",
		"chdir = /var/www/acme/shop",
		"php_admin_value[session.save_path] = /var/www/acme/shop/sessions",
	} {
		if !strings.Contains(string(content), expected) {
			t.Errorf("expected pool to contain %q", expected)
		}
	}

	calls := mock.Commands()
	if len(calls) != 1 {
		t.Fatalf("expected 1 command, got %d", len(calls))
	}
	if calls[0].Name != "systemctl" || strings.Join(calls[0].Args, " ") != "reload php8.2-fpm" {
		t.Errorf("expected systemctl reload php8.2-fpm, got %s %v", calls[0].Name, calls[0].Args)
	}
}

func TestRemove(t *testing.T) {
	mock := &executor.MockExecutor{}
	m, dir := newTestManager(t, mock)
	ctx := context.Background()

	if err := m.Create(ctx, "blog", "/srv/blog"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Remove(ctx, "blog"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "blog.conf")); !os.IsNotExist(err) {
		t.Error("pool file should have been removed")
	}

	// absent pool still reloads and succeeds
	if err := m.Remove(ctx, "blog"); err != nil {
		t.Errorf("Remove of absent pool failed: %v", err)
	}
	if n := len(mock.Commands()); n != 3 {
		t.Errorf("expected 3 reloads, got %d", n)
	}
}

func TestReload(t *testing.T) {
	tests := []struct {
		name      string
		fail      map[string]bool
		wantErr   bool
		wantCalls int
	}{
		{"systemctl", nil, false, 1},
		{"service fallback", map[string]bool{"systemctl": true}, false, 2},
		{"both fail", map[string]bool{"systemctl": true, "service": true}, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &executor.MockExecutor{
				ExecuteFunc: func(name string, args ...string) ([]byte, error) {
					if tt.fail[name] {
						return []byte("Failed to reload"), errors.New("exit status 1")
					}
					return nil, nil
				},
			}
			m, _ := newTestManager(t, mock)

			err := m.Reload(context.Background())
			if tt.wantErr {
				if !herrors.Is(err, herrors.ErrExternalCommand) {
					t.Errorf("expected external command error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if n := len(mock.Commands()); n != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, n)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := config.New().PHP
	cfg.PoolDir = "/etc/php/8.3/fpm/pool.d"
	cfg.Version = "8.3"
	m := NewManager(cfg, template.NewRenderer(), &executor.MockExecutor{})

	if got := m.Path("acme"); got != "/etc/php/8.3/fpm/pool.d/acme.conf" {
		t.Errorf("unexpected path %s", got)
	}
	if got := m.Socket("acme"); got != "/run/php/php8.3-fpm-acme.sock" {
		t.Errorf("unexpected socket %s", got)
	}
}
