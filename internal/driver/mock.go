package driver

import (
	"context"
	"sync"
)

// MockDriver is a test double for Driver interface.
// It is safe for concurrent use.
type MockDriver struct {
	name  string
	paths Paths

	// Function mocks - set these to customize behavior
	InstallFunc   func(name, content string) error
	UninstallFunc func(name string) error
	EnableFunc    func(name string) error
	DisableFunc   func(name string) error
	ListFunc      func() ([]string, error)
	IsEnabledFunc func(name string) (bool, error)
	TestFunc      func() error
	ReloadFunc    func() error

	// OnCall, when set, is invoked before every operation with the
	// operation name ("install", "enable", ...) and its argument.
	OnCall func(op, name string)

	// Call tracking - check these to verify interactions
	InstallCalls   []InstallCall
	UninstallCalls []string
	EnableCalls    []string
	DisableCalls   []string
	ListCalls      int
	IsEnabledCalls []string
	TestCalls      int
	ReloadCalls    int

	mu sync.Mutex
}

// InstallCall records arguments passed to Install
type InstallCall struct {
	Name    string
	Content string
}

// NewMockDriver creates a new MockDriver with default no-op implementations
func NewMockDriver(name, availableDir, enabledDir string) *MockDriver {
	return &MockDriver{
		name: name,
		paths: Paths{
			Available: availableDir,
			Enabled:   enabledDir,
		},
	}
}

func (m *MockDriver) record(op, name string, track func()) {
	m.mu.Lock()
	track()
	m.mu.Unlock()
	if m.OnCall != nil {
		m.OnCall(op, name)
	}
}

// Name returns the driver name
func (m *MockDriver) Name() string {
	return m.name
}

// Paths returns the configured paths
func (m *MockDriver) Paths() Paths {
	return m.paths
}

// Install records the call and invokes the mock function if set
func (m *MockDriver) Install(name, content string) error {
	m.record("install", name, func() {
		m.InstallCalls = append(m.InstallCalls, InstallCall{Name: name, Content: content})
	})
	if m.InstallFunc != nil {
		return m.InstallFunc(name, content)
	}
	return nil
}

// Uninstall records the call and invokes the mock function if set
func (m *MockDriver) Uninstall(name string) error {
	m.record("uninstall", name, func() { m.UninstallCalls = append(m.UninstallCalls, name) })
	if m.UninstallFunc != nil {
		return m.UninstallFunc(name)
	}
	return nil
}

// Enable records the call and invokes the mock function if set
func (m *MockDriver) Enable(name string) error {
	m.record("enable", name, func() { m.EnableCalls = append(m.EnableCalls, name) })
	if m.EnableFunc != nil {
		return m.EnableFunc(name)
	}
	return nil
}

// Disable records the call and invokes the mock function if set
func (m *MockDriver) Disable(name string) error {
	m.record("disable", name, func() { m.DisableCalls = append(m.DisableCalls, name) })
	if m.DisableFunc != nil {
		return m.DisableFunc(name)
	}
	return nil
}

// List records the call and invokes the mock function if set
func (m *MockDriver) List() ([]string, error) {
	m.record("list", "", func() { m.ListCalls++ })
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []string{}, nil
}

// IsEnabled records the call and invokes the mock function if set
func (m *MockDriver) IsEnabled(name string) (bool, error) {
	m.record("is-enabled", name, func() { m.IsEnabledCalls = append(m.IsEnabledCalls, name) })
	if m.IsEnabledFunc != nil {
		return m.IsEnabledFunc(name)
	}
	return false, nil
}

// Test records the call and invokes the mock function if set
func (m *MockDriver) Test(ctx context.Context) error {
	m.record("test", "", func() { m.TestCalls++ })
	if m.TestFunc != nil {
		return m.TestFunc()
	}
	return nil
}

// Reload records the call and invokes the mock function if set
func (m *MockDriver) Reload(ctx context.Context) error {
	m.record("reload", "", func() { m.ReloadCalls++ })
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return nil
}

// Reset clears all call tracking
func (m *MockDriver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InstallCalls = nil
	m.UninstallCalls = nil
	m.EnableCalls = nil
	m.DisableCalls = nil
	m.IsEnabledCalls = nil
	m.ListCalls = 0
	m.TestCalls = 0
	m.ReloadCalls = 0
}
