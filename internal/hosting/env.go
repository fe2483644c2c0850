package hosting

import (
	"context"

	"github.com/ksyq12/hostctl/internal/config"
	"github.com/ksyq12/hostctl/internal/driver"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/pool"
	"github.com/ksyq12/hostctl/internal/store"
	"github.com/ksyq12/hostctl/internal/template"
	"github.com/ksyq12/hostctl/internal/userdir"
)

// DefaultPort is the port every virtual host listens on.
const DefaultPort = 80

// Users allocates and manages system accounts.
type Users interface {
	Free(name string) (string, error)
	Create(ctx context.Context, name, home string) error
	Remove(ctx context.Context, name, backup string) error
}

// Pools manages per-host PHP-FPM pools.
type Pools interface {
	Create(ctx context.Context, account, home string) error
	Remove(ctx context.Context, account string) error
	Socket(account string) string
}

// Env holds the collaborators a Client or Host acts through.
type Env struct {
	Store    store.Store
	Shell    *executor.Shell
	Users    Users
	Renderer *template.Renderer
	Driver   driver.Driver
	Pools    Pools
	Paths    config.Paths
	Port     int
}

// NewEnv wires the system implementations for cfg around st.
// Every command goes through exec.
func NewEnv(cfg *config.Config, st store.Store, exec executor.CommandExecutor) *Env {
	renderer := template.NewRenderer()
	port := cfg.Apache.Port
	if port == 0 {
		port = DefaultPort
	}
	return &Env{
		Store:    st,
		Shell:    executor.NewShell(exec),
		Users:    userdir.New(cfg.Paths.Passwd, exec),
		Renderer: renderer,
		Driver:   driver.NewApache(cfg.Apache, exec),
		Pools:    pool.NewManager(cfg.PHP, renderer, exec),
		Paths:    cfg.Paths,
		Port:     port,
	}
}

// AllHosts returns every host record ordered by hostname.
func AllHosts(ctx context.Context, env *Env) ([]store.Host, error) {
	return env.Store.ListHosts(ctx)
}

// AllHostsByClient returns the host records of client ordered by hostname.
func AllHostsByClient(ctx context.Context, env *Env, client string) ([]store.Host, error) {
	return env.Store.ListHostsByClient(ctx, client)
}
