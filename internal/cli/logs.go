package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/output"
)

var (
	logsAccess bool
	logsError  bool
	logsFollow bool
	logsLines  int
)

var hostLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the Apache logs of a virtual host",
	Long: `View the access and error logs written to the host's logs folder.

By default both logs are shown.
Use --access or --error to show only one of them.

Examples:
  hostctl host logs --host example.com --client acme
  hostctl host logs --host example.com --client acme --error -f
  hostctl host logs --host example.com --client acme -n 50`,
	Args: cobra.NoArgs,
	RunE: runHostLogs,
}

func init() {
	addHostFlags(hostLogsCmd)
	hostLogsCmd.Flags().BoolVar(&logsAccess, "access", false, "Show access log only")
	hostLogsCmd.Flags().BoolVar(&logsError, "error", false, "Show error log only")
	hostLogsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	hostLogsCmd.Flags().IntVarP(&logsLines, "lines", "n", 20, "Number of lines to show")

	hostCmd.AddCommand(hostLogsCmd)
}

// logFiles returns the existing log files of a host rooted at path
func logFiles(path string) []string {
	showAccess, showError := true, true
	if logsAccess && !logsError {
		showError = false
	} else if logsError && !logsAccess {
		showAccess = false
	}

	logs := filepath.Join(path, "logs")
	var files []string
	for _, f := range []struct {
		show bool
		name string
	}{
		{showAccess, "access.log"},
		{showError, "error.log"},
	} {
		if !f.show {
			continue
		}
		p := filepath.Join(logs, f.name)
		if _, err := os.Stat(p); err != nil {
			output.Warn("Log not found: %s", p)
			continue
		}
		files = append(files, p)
	}
	return files
}

func runHostLogs(cmd *cobra.Command, args []string) error {
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

	files := logFiles(rec.Path)
	if len(files) == 0 {
		return herrors.WrapEntity(herrors.ErrCodeNotFound, hostName, "no log files found", nil)
	}

	tailArgs := []string{}
	if logsFollow {
		tailArgs = append(tailArgs, "-f")
	}
	tailArgs = append(tailArgs, "-n", strconv.Itoa(logsLines))
	tailArgs = append(tailArgs, files...)

	tailPath, err := deps.CommandRunner.LookPath("tail")
	if err != nil {
		return herrors.Wrap(herrors.ErrCodeExternalCommand, "tail command not found", err)
	}

	if len(files) == 1 {
		output.Info("Showing logs from: %s", files[0])
	} else {
		output.Info("Showing logs from:")
		for _, f := range files {
			output.Print("  - %s", f)
		}
	}
	output.Print("")

	if err := deps.CommandRunner.RunInteractive(tailPath, tailArgs...); err != nil {
		// 130 and 143: interrupted by SIGINT or SIGTERM
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code == 130 || code == 143 {
				return nil
			}
		}
		return herrors.Wrap(herrors.ErrCodeExternalCommand, "failed to read logs", err)
	}

	return nil
}
