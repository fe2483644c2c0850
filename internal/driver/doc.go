// Package driver manages the Apache site registry that hostctl installs
// virtual hosts into.
//
// Configs are written to sites-available as <name>.conf and activated by a
// symlink in sites-enabled, the layout a2ensite uses on Debian. RHEL and
// Homebrew layouts are supported through the configured directories.
//
// # Basic Usage
//
//	drv := driver.NewApache(cfg.Apache, executor.NewSystemExecutor())
//
//	if err := drv.Install("shop.acme.test", content); err != nil {
//	    return err
//	}
//	if err := drv.Enable("shop.acme.test"); err != nil {
//	    return err
//	}
//	err := drv.Reload(ctx)
//
// Enable, Disable and Uninstall are idempotent so that a partially
// provisioned host can be torn down again.
//
// # Testing
//
// Commands (configtest, reload) go through an executor.CommandExecutor, so a
// mock executor can stand in for the system:
//
//	mockExec := &executor.MockExecutor{}
//	drv := driver.NewApache(config.Apache{Available: a, Enabled: e}, mockExec)
//
// MockDriver replaces the whole driver where filesystem effects are not
// wanted.
package driver
