package cli

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/output"
)

var hostShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show details of a virtual host",
	Long: `Show the record of a virtual host together with the files and
services provisioned for it.

Examples:
  hostctl host show --host example.com --client acme
  hostctl host show --host example.com --client acme --json`,
	Args: cobra.NoArgs,
	RunE: runHostShow,
}

func init() {
	addHostFlags(hostShowCmd)
	hostCmd.AddCommand(hostShowCmd)
}

// showDetail represents the detailed host information for output
type showDetail struct {
	Host       string    `json:"host"`
	Client     string    `json:"client"`
	User       string    `json:"user"`
	Path       string    `json:"path"`
	Aliases    []string  `json:"aliases,omitempty"`
	VHostFile  string    `json:"vhost_file"`
	PHPSocket  string    `json:"php_socket"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	DocRoot    string    `json:"document_root"`
	LogsFolder string    `json:"logs_folder"`
}

func runHostShow(cmd *cobra.Command, args []string) error {
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
	rec, err := h.Info(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		return herrors.NotFound("host", hostName)
	}

	enabled, err := env.Driver.IsEnabled(rec.Host)
	if err != nil {
		output.Warn("Could not determine enabled status: %v", err)
	}

	detail := showDetail{
		Host:       rec.Host,
		Client:     rec.Client,
		User:       rec.User,
		Path:       rec.Path,
		Aliases:    rec.Aliases(),
		VHostFile:  filepath.Join(env.Driver.Paths().Available, rec.Host+".conf"),
		PHPSocket:  env.Pools.Socket(rec.User),
		Enabled:    enabled,
		CreatedAt:  rec.CreatedAt,
		DocRoot:    filepath.Join(rec.Path, "web"),
		LogsFolder: filepath.Join(rec.Path, "logs"),
	}

	if jsonOutput {
		return output.JSON(detail)
	}

	output.Print("")
	output.Print("Host:       %s", detail.Host)
	output.Print("Client:     %s", detail.Client)
	output.Print("User:       %s", detail.User)
	output.Print("Path:       %s", detail.Path)
	if len(detail.Aliases) > 0 {
		output.Print("Aliases:    %s", strings.Join(detail.Aliases, ", "))
	}
	output.Print("DocRoot:    %s", detail.DocRoot)
	output.Print("VHost:      %s", detail.VHostFile)
	output.Print("PHP socket: %s", detail.PHPSocket)
	if detail.Enabled {
		output.Print("Enabled:    yes")
	} else {
		output.Print("Enabled:    no")
	}
	output.Print("Created:    %s", detail.CreatedAt.Format("2006-01-02 15:04:05"))
	output.Print("")

	return nil
}
