package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/hostctl/internal/logger"
	"github.com/ksyq12/hostctl/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	configFile string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hostctl",
	Short: "Multi-tenant Apache and PHP-FPM hosting provisioner",
	Long: `hostctl provisions hosting clients and their virtual hosts.

A client is a system account with a home and a web root. Each host of a
client gets its own account, directory tree, Apache vhost and PHP-FPM
pool. Every client and host is recorded in a local store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		output.Fail(err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $HOSTCTL_CONFIG or /etc/hostctl/config.yaml)")
}
