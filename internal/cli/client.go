package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ksyq12/hostctl/internal/hosting"
	"github.com/ksyq12/hostctl/internal/output"
	"github.com/ksyq12/hostctl/internal/store"
)

var (
	cascadeRemove     bool
	forceClientRemove bool
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage hosting clients",
}

var clientCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a client account and web root",
	Long: `Create a hosting client.

A free system account is derived from the name, its home is created under
the vhost directory and its web root under the www directory. Creating an
existing client does nothing.

Examples:
  hostctl client create acme`,
	Args: cobra.ExactArgs(1),
	RunE: runClientCreate,
}

var clientRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a client",
	Long: `Remove a hosting client.

The client's account is deleted and its home moved to the backup
directory. Hosts of the client are only removed with --cascade; without
it they are left in place and reported.

Examples:
  hostctl client remove acme
  hostctl client remove acme --cascade --force`,
	Args: cobra.ExactArgs(1),
	RunE: runClientRemove,
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE:  runClientList,
}

func init() {
	clientRemoveCmd.Flags().BoolVar(&cascadeRemove, "cascade", false, "Remove every host of the client first")
	clientRemoveCmd.Flags().BoolVarP(&forceClientRemove, "force", "f", false, "Remove without confirmation")

	clientCmd.AddCommand(clientCreateCmd, clientRemoveCmd, clientListCmd)
	rootCmd.AddCommand(clientCmd)
}

func runClientCreate(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := requireRoot(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := hosting.NewClient(env, name).Create(ctx); err != nil {
		return err
	}

	return outputResult(newSuccessResult("client", name, "create"), "Client %s created", name)
}

func runClientRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := requireRoot(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	client := hosting.NewClient(env, name)
	exists, err := client.Exists(ctx)
	if err != nil {
		return err
	}

	if exists && !forceClientRemove {
		prompt := "Remove client '%s'?"
		if cascadeRemove {
			prompt = "Remove client '%s' and all of its hosts?"
		}
		ok, err := confirm(prompt, name)
		if err != nil {
			return err
		}
		if !ok {
			output.Info("Removal cancelled")
			return nil
		}
	}

	if err := client.Remove(ctx, hosting.RemoveOptions{Cascade: cascadeRemove}); err != nil {
		return err
	}

	return outputResult(newSuccessResult("client", name, "remove"), "Client %s removed", name)
}

// ClientListItem is one row of `client list`
type ClientListItem struct {
	store.Client
	Hosts int `json:"hosts"`
}

func runClientList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, done, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer done()

	clients, err := env.Store.ListClients(ctx)
	if err != nil {
		return err
	}

	items := make([]ClientListItem, 0, len(clients))
	for _, c := range clients {
		hosts, err := hosting.AllHostsByClient(ctx, env, c.Name)
		if err != nil {
			return err
		}
		items = append(items, ClientListItem{Client: c, Hosts: len(hosts)})
	}

	if jsonOutput {
		return output.JSON(items)
	}

	if len(items) == 0 {
		output.Info("No clients found")
		return nil
	}

	headers := []string{"NAME", "USER", "PATH", "HOSTS"}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Name, it.User, it.Path, strconv.Itoa(it.Hosts)})
	}
	output.Table(headers, rows)
	return nil
}
