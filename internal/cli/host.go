package cli

import (
	"strings"

	"github.com/spf13/cobra"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/hosting"
	"github.com/ksyq12/hostctl/internal/output"
	"github.com/ksyq12/hostctl/internal/store"
)

var (
	hostName        string
	hostClient      string
	hostAliases     []string
	hostSetAliases  []string
	forceHostRemove bool
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Manage virtual hosts of a client",
}

var hostCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a virtual host",
	Long: `Provision a virtual host under an existing client.

The host gets its own system account, a directory tree under the client's
web root, an enabled Apache vhost and a PHP-FPM pool. Creating an existing
host does nothing. A failed step is not rolled back.

Examples:
  hostctl host create --host example.com --client acme
  hostctl host create --host example.com --client acme --alias www.example.com`,
	Args: cobra.NoArgs,
	RunE: runHostCreate,
}

var hostRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Deprovision a virtual host",
	Long: `Deprovision a virtual host.

The vhost is disabled, then the vhost file, directory tree, pool and
account are removed. The account's home is moved to the backup directory.

Examples:
  hostctl host remove --host example.com --client acme --force`,
	Args: cobra.NoArgs,
	RunE: runHostRemove,
}

var hostUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-render the vhost of a host",
	Args:  cobra.NoArgs,
	RunE:  runHostUpdate,
}

var hostAliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Replace the aliases of a host",
	Long: `Replace the aliases of a host and re-render its vhost.

Examples:
  hostctl host alias --host example.com --client acme --set www.example.com,example.org
  hostctl host alias --host example.com --client acme --set ""`,
	Args: cobra.NoArgs,
	RunE: runHostAlias,
}

var hostListCmd = &cobra.Command{
	Use:   "list",
	Short: "List virtual hosts",
	Args:  cobra.NoArgs,
	RunE:  runHostList,
}

// addHostFlags registers the required --host and --client flags on c
func addHostFlags(c *cobra.Command) {
	c.Flags().StringVar(&hostName, "host", "", "Hostname (required)")
	c.Flags().StringVar(&hostClient, "client", "", "Owning client (required)")
	_ = c.MarkFlagRequired("host")
	_ = c.MarkFlagRequired("client")
}

func init() {
	for _, c := range []*cobra.Command{hostCreateCmd, hostRemoveCmd, hostUpdateCmd, hostAliasCmd} {
		addHostFlags(c)
	}
	hostCreateCmd.Flags().StringSliceVar(&hostAliases, "alias", nil, "Additional server names (comma-separated)")
	hostRemoveCmd.Flags().BoolVarP(&forceHostRemove, "force", "f", false, "Remove without confirmation")
	hostAliasCmd.Flags().StringSliceVar(&hostSetAliases, "set", nil, "New alias list (comma-separated, empty clears)")
	_ = hostAliasCmd.MarkFlagRequired("set")
	hostListCmd.Flags().StringVar(&hostClient, "client", "", "Only list hosts of this client")

	hostCmd.AddCommand(hostCreateCmd, hostRemoveCmd, hostUpdateCmd, hostAliasCmd, hostListCmd)
	rootCmd.AddCommand(hostCmd)
}

// hostHandle validates --host/--client and returns the host handle
func hostHandle(env *hosting.Env) (*hosting.Host, error) {
	if strings.TrimSpace(hostClient) == "" {
		return nil, herrors.Validation("--client is required")
	}
	if err := hosting.ValidateHostname(hostName); err != nil {
		return nil, err
	}
	return hosting.NewClient(env, hostClient).Host(hostName), nil
}

func newHostResult(action string, aliases []string) CommandResult {
	r := newSuccessResult("host", hostName, action)
	r.Client = hostClient
	r.Aliases = aliases
	return r
}

func runHostCreate(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	h, err := hostHandle(env)
	if err != nil {
		return err
	}
	h.Aliases = splitList(hostAliases)

	if err := h.Create(ctx); err != nil {
		return err
	}

	return outputResult(newHostResult("create", h.Aliases), "Host %s created for client %s", hostName, hostClient)
}

func runHostRemove(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	h, err := hostHandle(env)
	if err != nil {
		return err
	}

	exists, err := h.Exists(ctx)
	if err != nil {
		return err
	}
	if exists && !forceHostRemove {
		ok, err := confirm("Remove host '%s' of client '%s'?", hostName, hostClient)
		if err != nil {
			return err
		}
		if !ok {
			output.Info("Removal cancelled")
			return nil
		}
	}

	if err := h.Remove(ctx); err != nil {
		return err
	}

	return outputResult(newHostResult("remove", nil), "Host %s removed", hostName)
}

func runHostUpdate(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	h, err := hostHandle(env)
	if err != nil {
		return err
	}
	if err := h.Update(ctx); err != nil {
		return err
	}

	return outputResult(newHostResult("update", nil), "Host %s updated", hostName)
}

func runHostAlias(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	h, err := hostHandle(env)
	if err != nil {
		return err
	}
	aliases := splitList(hostSetAliases)
	if err := h.SetAliases(ctx, aliases); err != nil {
		return err
	}

	return outputResult(newHostResult("alias", aliases), "Aliases of %s set to [%s]", hostName, strings.Join(aliases, ", "))
}

func runHostList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	var hosts []store.Host
	if hostClient != "" {
		hosts, err = hosting.AllHostsByClient(ctx, env, hostClient)
	} else {
		hosts, err = hosting.AllHosts(ctx, env)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		if hosts == nil {
			hosts = []store.Host{}
		}
		return output.JSON(hosts)
	}

	if len(hosts) == 0 {
		output.Info("No hosts found")
		return nil
	}

	headers := []string{"HOST", "CLIENT", "USER", "PATH", "ALIASES"}
	rows := make([][]string, 0, len(hosts))
	for _, h := range hosts {
		rows = append(rows, []string{h.Host, h.Client, h.User, h.Path, strings.Join(h.Aliases(), ", ")})
	}
	output.Table(headers, rows)
	return nil
}
