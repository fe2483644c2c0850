package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/hosting"
	"github.com/ksyq12/hostctl/internal/input"
	"github.com/ksyq12/hostctl/internal/logger"
	"github.com/ksyq12/hostctl/internal/output"
)

// commandContext returns the command's context, or Background when the
// command is run directly (tests call run functions with a nil cmd).
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// requireRoot guards every command that changes the system
func requireRoot() error {
	return deps.RootChecker.RequireRoot()
}

// platformDefaults returns the config defaults for the detected layout.
// Detection failure falls back to the Debian defaults.
func platformDefaults() *config.Config {
	paths, err := deps.PlatformDetector.DetectPaths()
	if err != nil {
		logger.Debug("platform detection failed, using defaults: %v", err)
		return config.New()
	}
	return config.ForPlatform(paths)
}

// loadConfig reads the config file selected by --config
func loadConfig() (*config.Config, error) {
	path := config.Path(configFile)
	cfg, err := deps.ConfigLoader.Load(path, platformDefaults())
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeConfig, "failed to load config", err)
	}
	if cfg.Log.Verbose {
		logger.SetLevel(logger.LevelDebug)
	}
	logger.Debug("loaded config from %s", path)
	return cfg, nil
}

// openEnv loads the config and opens the provisioning environment.
// The caller must call the returned func when done.
func openEnv(ctx context.Context) (*hosting.Env, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	env, closeStore, err := deps.EnvFactory.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return env, func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close store: %v", err)
		}
	}, nil
}

// confirm asks a yes/no question on stdin
func confirm(format string, args ...interface{}) (bool, error) {
	prompt := strings.TrimSpace(fmt.Sprintf(format, args...)) + " [y/N]: "
	return input.Confirm(deps.StdinReader, output.Stdout, prompt)
}

// outputResult reports a successful mutation. Success is silent unless
// --json or --verbose is given.
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	if verbose {
		output.Success(successMsg, args...)
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping empty items
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success bool     `json:"success"`
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	Client  string   `json:"client,omitempty"`
	Action  string   `json:"action"`
	Aliases []string `json:"aliases,omitempty"`
	Message string   `json:"message,omitempty"`
}

// newSuccessResult creates a success result
func newSuccessResult(kind, name, action string) CommandResult {
	return CommandResult{
		Success: true,
		Kind:    kind,
		Name:    name,
		Action:  action,
	}
}
