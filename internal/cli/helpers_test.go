package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/hostctl/internal/config"
	"github.com/ksyq12/hostctl/internal/driver"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/hosting"
	"github.com/ksyq12/hostctl/internal/output"
	"github.com/ksyq12/hostctl/internal/pool"
	"github.com/ksyq12/hostctl/internal/store"
	"github.com/ksyq12/hostctl/internal/template"
	"github.com/ksyq12/hostctl/internal/userdir"
)

// testEnv is a provisioning environment backed by a temporary SQLite
// store, a mock driver and a mock executor.
type testEnv struct {
	env   *hosting.Env
	store *store.GormStore
	drv   *driver.MockDriver
	exec  *executor.MockExecutor
	cfg   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.New()
	cfg.Paths.WWW = filepath.Join(dir, "www")
	cfg.Paths.VHost = filepath.Join(dir, "www", "vhost")
	cfg.Paths.Backup = filepath.Join(dir, "backup")
	cfg.Paths.Passwd = filepath.Join(dir, "passwd")
	cfg.PHP.PoolDir = filepath.Join(dir, "pool.d")
	cfg.PHP.Service = "php8.2-fpm"
	cfg.Store.Path = filepath.Join(dir, "hostctl.db")

	passwd := "root:x:0:0:root:/root:/bin/bash\nwww-data:x:33:33:www-data:/var/www:/usr/sbin/nologin\n"
	if err := os.WriteFile(cfg.Paths.Passwd, []byte(passwd), 0644); err != nil {
		t.Fatalf("failed to write passwd: %v", err)
	}

	st, err := store.NewGormStore(cfg.Store.Path)
	if err != nil {
		t.Fatalf("NewGormStore failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	exec := &executor.MockExecutor{}
	drv := driver.NewMockDriver("apache", filepath.Join(dir, "sites-available"), filepath.Join(dir, "sites-enabled"))
	renderer := template.NewRenderer()

	return &testEnv{
		env: &hosting.Env{
			Store:    st,
			Shell:    executor.NewShell(exec),
			Users:    userdir.New(cfg.Paths.Passwd, exec),
			Renderer: renderer,
			Driver:   drv,
			Pools:    pool.NewManager(cfg.PHP, renderer, exec),
			Paths:    cfg.Paths,
			Port:     hosting.DefaultPort,
		},
		store: st,
		drv:   drv,
		exec:  exec,
		cfg:   cfg,
	}
}

// useDeps installs d for the duration of the test and resets the flags.
func useDeps(t *testing.T, d *Dependencies) {
	t.Helper()
	old := deps
	deps = d
	resetFlags()
	t.Cleanup(func() {
		deps = old
		resetFlags()
	})
}

func resetFlags() {
	jsonOutput = false
	verbose = false
	configFile = ""
	cascadeRemove = false
	forceClientRemove = false
	hostName = ""
	hostClient = ""
	hostAliases = nil
	hostSetAliases = nil
	forceHostRemove = false
	forceConfigInit = false
	logsAccess = false
	logsError = false
	logsFollow = false
	logsLines = 20
}

// captureOutput redirects output.Stdout for the duration of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := output.Stdout
	output.Stdout = buf
	t.Cleanup(func() { output.Stdout = old })
	return buf
}

// ranCommand reports whether the mock executor ran a command line starting with prefix.
func ranCommand(exec *executor.MockExecutor, prefix string) bool {
	for _, c := range exec.Commands() {
		if strings.HasPrefix(strings.Join(append([]string{c.Name}, c.Args...), " "), prefix) {
			return true
		}
	}
	return false
}
