package cli

import (
	"context"
	"os"
	"os/exec"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/hosting"
	"github.com/ksyq12/hostctl/internal/input"
	"github.com/ksyq12/hostctl/internal/platform"
	"github.com/ksyq12/hostctl/internal/store"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	PlatformDetector PlatformDetector
	EnvFactory       EnvFactory
	RootChecker      RootChecker
	StdinReader      input.Reader
	CommandRunner    CommandRunner
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load(path string, defaults *config.Config) (*config.Config, error)
	Save(cfg *config.Config, path string) error
	Exists(path string) bool
}

// PlatformDetector handles platform path detection
type PlatformDetector interface {
	DetectPaths() (*platform.PlatformPaths, error)
}

// EnvFactory opens the record store and wires the provisioning
// collaborators for cfg. The returned func releases the store.
type EnvFactory interface {
	Open(ctx context.Context, cfg *config.Config) (*hosting.Env, func() error, error)
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	PlatformDetector: &realPlatformDetector{},
	EnvFactory:       &realEnvFactory{},
	RootChecker:      &realRootChecker{},
	StdinReader:      input.NewStdinReader(),
	CommandRunner:    &realCommandRunner{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string, defaults *config.Config) (*config.Config, error) {
	return config.Load(path, defaults)
}

func (r *realConfigLoader) Save(cfg *config.Config, path string) error {
	return cfg.Save(path)
}

func (r *realConfigLoader) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

type realPlatformDetector struct{}

func (r *realPlatformDetector) DetectPaths() (*platform.PlatformPaths, error) {
	return platform.DetectPaths()
}

type realEnvFactory struct{}

func (r *realEnvFactory) Open(ctx context.Context, cfg *config.Config) (*hosting.Env, func() error, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return hosting.NewEnv(cfg, st, executor.NewSystemExecutor()), st.Close, nil
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return herrors.ErrRootRequired
	}
	return nil
}

// CommandRunner runs commands attached to the terminal, for `host logs`
type CommandRunner interface {
	RunInteractive(name string, args ...string) error
	LookPath(file string) (string, error)
}

type realCommandRunner struct{}

func (r *realCommandRunner) RunInteractive(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r *realCommandRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
