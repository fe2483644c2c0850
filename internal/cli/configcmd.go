package cli

import (
	"gopkg.in/yaml.v3"

	"github.com/spf13/cobra"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/output"
)

var forceConfigInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialise the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration for this platform",
	Long: `Write the default configuration, adjusted to the detected Apache and
PHP-FPM layout, to the config file.

Examples:
  hostctl config init
  hostctl config init --config ./hostctl.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceConfigInit, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigInitResult is the JSON result of `config init`
type ConfigInitResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	path := config.Path(configFile)
	if deps.ConfigLoader.Exists(path) && !forceConfigInit {
		return herrors.WrapEntity(herrors.ErrCodeAlreadyExists, path, "config file already exists (use --force to overwrite)", nil)
	}

	cfg := platformDefaults()
	cfg.Fill()
	if err := cfg.Validate(); err != nil {
		return herrors.Wrap(herrors.ErrCodeConfig, "detected defaults are invalid", err)
	}
	if err := deps.ConfigLoader.Save(cfg, path); err != nil {
		return herrors.Wrap(herrors.ErrCodeConfig, "failed to save config", err)
	}

	return outputResult(ConfigInitResult{Success: true, Path: path}, "Config written to %s", path)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shown := *cfg
	if shown.Store.Redis.Password != "" {
		shown.Store.Redis.Password = "********"
	}

	if jsonOutput {
		return output.JSON(shown)
	}

	data, err := yaml.Marshal(shown)
	if err != nil {
		return herrors.Wrap(herrors.ErrCodeConfig, "failed to marshal config", err)
	}
	_, err = output.Stdout.Write(data)
	return err
}
