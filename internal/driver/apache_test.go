package driver

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
)

func newTestApache(t *testing.T, exec executor.CommandExecutor) (*ApacheDriver, string, string) {
	t.Helper()
	tempDir := t.TempDir()
	availableDir := filepath.Join(tempDir, "sites-available")
	enabledDir := filepath.Join(tempDir, "sites-enabled")
	if exec == nil {
		exec = &executor.MockExecutor{}
	}
	drv := NewApache(config.Apache{
		Available: availableDir,
		Enabled:   enabledDir,
		Service:   "apache2",
	}, exec)
	return drv, availableDir, enabledDir
}

func TestApacheDriver(t *testing.T) {
	drv, availableDir, enabledDir := newTestApache(t, nil)
	const name = "test.example.com"

	t.Run("Name", func(t *testing.T) {
		if drv.Name() != "apache" {
			t.Errorf("expected apache, got %s", drv.Name())
		}
	})

	t.Run("Paths", func(t *testing.T) {
		paths := drv.Paths()
		if paths.Available != availableDir {
			t.Errorf("expected %s, got %s", availableDir, paths.Available)
		}
		if paths.Enabled != enabledDir {
			t.Errorf("expected %s, got %s", enabledDir, paths.Enabled)
		}
	})

	t.Run("EnableBeforeInstall", func(t *testing.T) {
		err := drv.Enable(name)
		if !herrors.Is(err, herrors.ErrNotFound) {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("Install", func(t *testing.T) {
		configContent := "<VirtualHost *:80>\n    ServerName test.example.com\n</VirtualHost>"

		if err := drv.Install(name, configContent); err != nil {
			t.Fatalf("Install failed: %v", err)
		}

		content, err := os.ReadFile(filepath.Join(availableDir, name+".conf"))
		if err != nil {
			t.Fatalf("failed to read config: %v", err)
		}
		if string(content) != configContent {
			t.Errorf("config content mismatch")
		}

		// install alone must not activate the site
		if enabled, _ := drv.IsEnabled(name); enabled {
			t.Error("installed vhost should not be enabled")
		}
	})

	t.Run("List", func(t *testing.T) {
		names, err := drv.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(names) != 1 || names[0] != name {
			t.Errorf("expected [%s], got %v", name, names)
		}
	})

	t.Run("Enable", func(t *testing.T) {
		if err := drv.Enable(name); err != nil {
			t.Fatalf("Enable failed: %v", err)
		}

		info, err := os.Lstat(filepath.Join(enabledDir, name+".conf"))
		if err != nil {
			t.Fatalf("symlink not found: %v", err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			t.Error("expected symlink, got regular file")
		}

		// second enable is a no-op
		if err := drv.Enable(name); err != nil {
			t.Errorf("repeated Enable failed: %v", err)
		}
	})

	t.Run("IsEnabled", func(t *testing.T) {
		enabled, err := drv.IsEnabled(name)
		if err != nil {
			t.Fatalf("IsEnabled failed: %v", err)
		}
		if !enabled {
			t.Error("expected enabled to be true")
		}

		enabled, err = drv.IsEnabled("nonexistent.example.com")
		if err != nil {
			t.Fatalf("IsEnabled failed: %v", err)
		}
		if enabled {
			t.Error("expected enabled to be false for nonexistent vhost")
		}
	})

	t.Run("Disable", func(t *testing.T) {
		if err := drv.Disable(name); err != nil {
			t.Fatalf("Disable failed: %v", err)
		}
		if _, err := os.Lstat(filepath.Join(enabledDir, name+".conf")); !os.IsNotExist(err) {
			t.Error("symlink should have been removed")
		}
		if err := drv.Disable(name); err != nil {
			t.Errorf("repeated Disable failed: %v", err)
		}
	})

	t.Run("Uninstall", func(t *testing.T) {
		if err := drv.Uninstall(name); err != nil {
			t.Fatalf("Uninstall failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(availableDir, name+".conf")); !os.IsNotExist(err) {
			t.Error("config file should have been removed")
		}
	})

	t.Run("UninstallNonexistent", func(t *testing.T) {
		if err := drv.Uninstall("nonexistent.example.com"); err != nil {
			t.Errorf("expected no error for missing config, got %v", err)
		}
	})
}

func TestApacheDriverDisableRefusesRegularFile(t *testing.T) {
	drv, _, enabledDir := newTestApache(t, nil)
	if err := os.MkdirAll(enabledDir, 0755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(enabledDir, "static.test.conf")
	if err := os.WriteFile(target, []byte("config"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := drv.Disable("static.test"); err == nil {
		t.Error("expected error for non-symlink")
	}
	if _, err := os.Stat(target); err != nil {
		t.Error("regular file should be left in place")
	}
}

func TestApacheDriverListFiltersCorrectly(t *testing.T) {
	drv, availableDir, _ := newTestApache(t, nil)
	os.MkdirAll(availableDir, 0755)

	os.WriteFile(filepath.Join(availableDir, "example.com.conf"), []byte("config"), 0644)
	os.WriteFile(filepath.Join(availableDir, "test.org.conf"), []byte("config"), 0644)
	os.WriteFile(filepath.Join(availableDir, ".hidden.conf"), []byte("config"), 0644) // hidden file
	os.WriteFile(filepath.Join(availableDir, "noextension"), []byte("config"), 0644)  // no .conf
	os.MkdirAll(filepath.Join(availableDir, "directory.conf"), 0755)                  // directory

	names, err := drv.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("expected 2 vhosts, got %d: %v", len(names), names)
	}
	for _, n := range names {
		if strings.HasSuffix(n, ".conf") {
			t.Errorf("name should not have .conf extension: %s", n)
		}
	}
}

func TestApacheDriver_WithExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("Test_success", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				if name == "apache2ctl" && len(args) > 0 && args[0] == "configtest" {
					return []byte("Syntax OK"), nil
				}
				return nil, errors.New("unexpected command")
			},
		}

		drv, _, _ := newTestApache(t, mock)
		if err := drv.Test(ctx); err != nil {
			t.Errorf("Test should succeed: %v", err)
		}

		calls := mock.Commands()
		if len(calls) != 1 {
			t.Fatalf("expected 1 call, got %d", len(calls))
		}
		if calls[0].Name != "apache2ctl" || calls[0].Args[0] != "configtest" {
			t.Errorf("expected apache2ctl configtest, got %s %v", calls[0].Name, calls[0].Args)
		}
	})

	t.Run("Test_failure", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("Syntax error on line 10"), errors.New("exit status 1")
			},
		}

		drv, _, _ := newTestApache(t, mock)
		err := drv.Test(ctx)
		if !herrors.Is(err, herrors.ErrExternalCommand) {
			t.Fatalf("expected external command error, got %v", err)
		}
		if !strings.Contains(err.Error(), "Syntax error on line 10") {
			t.Errorf("expected output in error, got %v", err)
		}
	})

	t.Run("Test_rhel_ctl", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		drv := NewApache(config.Apache{Service: "httpd"}, mock)
		if err := drv.Test(ctx); err != nil {
			t.Fatalf("Test failed: %v", err)
		}
		if calls := mock.Commands(); calls[0].Name != "apachectl" {
			t.Errorf("expected apachectl, got %s", calls[0].Name)
		}
	})

	t.Run("Reload_systemctl_success", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				if name == "systemctl" && len(args) >= 2 && args[0] == "reload" && args[1] == "apache2" {
					return []byte(""), nil
				}
				return nil, errors.New("unexpected command")
			},
		}

		drv, _, _ := newTestApache(t, mock)
		if err := drv.Reload(ctx); err != nil {
			t.Errorf("Reload should succeed: %v", err)
		}
	})

	t.Run("Reload_fallback_success", func(t *testing.T) {
		callCount := 0
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				callCount++
				if callCount == 1 {
					return []byte("systemctl not available"), errors.New("systemctl not found")
				}
				if name == "apache2ctl" && len(args) > 0 && args[0] == "graceful" {
					return []byte(""), nil
				}
				return nil, errors.New("unexpected command")
			},
		}

		drv, _, _ := newTestApache(t, mock)
		if err := drv.Reload(ctx); err != nil {
			t.Errorf("Reload should succeed with fallback: %v", err)
		}
		if callCount != 2 {
			t.Errorf("expected 2 calls, got %d", callCount)
		}
	})

	t.Run("Reload_both_fail", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("error"), errors.New("command failed")
			},
		}

		drv, _, _ := newTestApache(t, mock)
		err := drv.Reload(ctx)
		if err == nil {
			t.Fatal("Reload should fail when both methods fail")
		}
		if herrors.CodeOf(err) != herrors.ErrCodeExternalCommand {
			t.Errorf("expected EXTERNAL_COMMAND, got %s", herrors.CodeOf(err))
		}
	})
}

func TestMockDriverOnCall(t *testing.T) {
	var ops []string
	m := NewMockDriver("apache", "/a", "/e")
	m.OnCall = func(op, name string) { ops = append(ops, op+":"+name) }

	m.Install("x.test", "content")
	m.Enable("x.test")
	m.Reload(context.Background())

	want := []string{"install:x.test", "enable:x.test", "reload:"}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, ops)
	}
	if len(m.InstallCalls) != 1 || m.InstallCalls[0].Content != "content" {
		t.Errorf("unexpected install calls %+v", m.InstallCalls)
	}

	m.Reset()
	if m.ReloadCalls != 0 || len(m.EnableCalls) != 0 {
		t.Error("Reset should clear call tracking")
	}
}
