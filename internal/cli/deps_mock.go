package cli

import (
	"context"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/hosting"
	"github.com/ksyq12/hostctl/internal/input"
	"github.com/ksyq12/hostctl/internal/platform"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	Present   bool
	LoadPaths []string
	SavePaths []string
}

func (m *MockConfigLoader) Load(path string, defaults *config.Config) (*config.Config, error) {
	m.LoadPaths = append(m.LoadPaths, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		if defaults == nil {
			defaults = config.New()
		}
		m.Cfg = defaults
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config, path string) error {
	m.SavePaths = append(m.SavePaths, path)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	m.Present = true
	return nil
}

func (m *MockConfigLoader) Exists(path string) bool {
	return m.Present
}

// MockPlatformDetector is a test double for PlatformDetector
type MockPlatformDetector struct {
	Paths *platform.PlatformPaths
	Err   error
}

func (m *MockPlatformDetector) DetectPaths() (*platform.PlatformPaths, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Paths != nil {
		return m.Paths, nil
	}
	return &platform.PlatformPaths{
		Apache: platform.PathConfig{
			Available: "/etc/apache2/sites-available",
			Enabled:   "/etc/apache2/sites-enabled",
		},
		ApacheService: "apache2",
		WebUser:       "www-data",
		PHPVersion:    "8.2",
		PoolDir:       "/etc/php/8.2/fpm/pool.d",
		PHPService:    "php8.2-fpm",
	}, nil
}

// MockEnvFactory is a test double for EnvFactory. It hands out Env as is.
type MockEnvFactory struct {
	Env        *hosting.Env
	Err        error
	Opened     int
	Closed     int
	LastConfig *config.Config
}

func (m *MockEnvFactory) Open(ctx context.Context, cfg *config.Config) (*hosting.Env, func() error, error) {
	m.LastConfig = cfg
	if m.Err != nil {
		return nil, nil, m.Err
	}
	m.Opened++
	return m.Env, func() error {
		m.Closed++
		return nil
	}, nil
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return herrors.ErrRootRequired
	}
	return nil
}

// MockCommandRunner is a test double for CommandRunner
type MockCommandRunner struct {
	Calls        [][]string
	LookPathFunc func(file string) (string, error)
	RunFunc      func(name string, args ...string) error
}

func (m *MockCommandRunner) RunInteractive(name string, args ...string) error {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	if m.RunFunc != nil {
		return m.RunFunc(name, args...)
	}
	return nil
}

func (m *MockCommandRunner) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:     &MockConfigLoader{},
			PlatformDetector: &MockPlatformDetector{},
			EnvFactory:       &MockEnvFactory{},
			RootChecker:      &MockRootChecker{IsRoot: true},
			StdinReader:      input.NewStringReader("y\n"),
			CommandRunner:    &MockCommandRunner{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg, Present: true}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithPlatform sets a custom platform detector
func (b *MockDependenciesBuilder) WithPlatform(detector PlatformDetector) *MockDependenciesBuilder {
	b.deps.PlatformDetector = detector
	return b
}

// WithEnv hands env to every command
func (b *MockDependenciesBuilder) WithEnv(env *hosting.Env) *MockDependenciesBuilder {
	b.deps.EnvFactory = &MockEnvFactory{Env: env}
	return b
}

// WithEnvFactory sets a custom env factory
func (b *MockDependenciesBuilder) WithEnvFactory(factory EnvFactory) *MockDependenciesBuilder {
	b.deps.EnvFactory = factory
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithStdinInput sets the answers read from stdin
func (b *MockDependenciesBuilder) WithStdinInput(inputs ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(inputs...)
	return b
}

// WithCommandRunner sets the runner used for interactive commands
func (b *MockDependenciesBuilder) WithCommandRunner(runner CommandRunner) *MockDependenciesBuilder {
	b.deps.CommandRunner = runner
	return b
}

// Build returns the constructed Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
