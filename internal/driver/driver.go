package driver

import "context"

// Driver manages the web server's site registry for provisioned hosts.
//
// Install only writes the configuration; a site becomes live once it is
// enabled and the server reloaded.
type Driver interface {
	// Name returns the driver name
	Name() string

	// Install writes the vhost config for name without enabling it
	Install(name, content string) error

	// Uninstall deletes the vhost config. A missing config is not an error.
	Uninstall(name string) error

	// Enable activates a vhost. Enabling an enabled vhost is a no-op.
	Enable(name string) error

	// Disable deactivates a vhost. Disabling a disabled vhost is a no-op.
	Disable(name string) error

	// IsEnabled checks if a vhost is enabled
	IsEnabled(name string) (bool, error)

	// List returns all installed vhost names
	List() ([]string, error)

	// Test validates the web server config syntax
	Test(ctx context.Context) error

	// Reload reloads the web server
	Reload(ctx context.Context) error

	// Paths returns the driver's config paths
	Paths() Paths
}

// Paths contains the web server config directory paths
type Paths struct {
	Available string // config available directory
	Enabled   string // config enabled directory
}
