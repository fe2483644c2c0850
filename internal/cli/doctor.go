package cli

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/hostctl/internal/config"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/hosting"
	"github.com/ksyq12/hostctl/internal/output"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks on the hosting stack and the recorded hosts.

Checks:
  - Apache and account tools installation
  - PHP-FPM service status
  - Configuration file and Apache config syntax
  - Per host: vhost enabled and directory present

Examples:
  hostctl doctor
  hostctl doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// Check statuses
const (
	statusSuccess = "success"
	statusWarning = "warning"
	statusError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HostStatus represents the status of a single host
type HostStatus struct {
	Host    string        `json:"host"`
	Client  string        `json:"client"`
	Enabled bool          `json:"enabled"`
	Checks  []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Hosts              []HostStatus  `json:"hosts"`
}

var apacheVersion = regexp.MustCompile(`Apache/(\d+\.\d+(?:\.\d+)?)`)

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	env, closeStore, err := deps.EnvFactory.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(ctx, env.Shell, cfg)
	report.Configuration = checkConfiguration(ctx, env, cfg)
	report.Hosts, err = checkHosts(ctx, env)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements(ctx context.Context, sh *executor.Shell, cfg *config.Config) []CheckResult {
	var results []CheckResult

	ctl := ""
	for _, bin := range []string{"apache2ctl", "apachectl"} {
		if _, err := sh.LookPath(bin); err == nil {
			ctl = bin
			break
		}
	}
	if ctl == "" {
		results = append(results, CheckResult{Status: statusError, Message: "Apache not installed"})
	} else {
		version := "unknown"
		if out, err := sh.Run(ctx, "{{ctl}} -v", executor.Bindings{"ctl": ctl}); err == nil {
			if m := apacheVersion.FindStringSubmatch(string(out)); len(m) >= 2 {
				version = m[1]
			}
		}
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("Apache installed (%s)", version),
		})
	}

	if isServiceActive(ctx, sh, cfg.PHP.Service) {
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("PHP-FPM %s running", cfg.PHP.Version),
		})
	} else {
		results = append(results, CheckResult{
			Status:  statusError,
			Message: fmt.Sprintf("PHP-FPM %s not running (%s)", cfg.PHP.Version, cfg.PHP.Service),
		})
	}

	for _, bin := range []string{"useradd", "userdel"} {
		if _, err := sh.LookPath(bin); err != nil {
			results = append(results, CheckResult{
				Status:  statusError,
				Message: fmt.Sprintf("%s not found", bin),
			})
		}
	}

	return results
}

func isServiceActive(ctx context.Context, sh *executor.Shell, service string) bool {
	b := executor.Bindings{"service": service}

	if out, err := sh.Run(ctx, "systemctl is-active {{service}}", b); err == nil {
		if strings.TrimSpace(string(out)) == "active" {
			return true
		}
	}

	if out, err := sh.Run(ctx, "service {{service}} status", b); err == nil {
		s := string(out)
		if strings.Contains(s, "running") || strings.Contains(s, "active") {
			return true
		}
	}

	return false
}

func checkConfiguration(ctx context.Context, env *hosting.Env, cfg *config.Config) []CheckResult {
	var results []CheckResult

	path := config.Path(configFile)
	if deps.ConfigLoader.Exists(path) {
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("Config file exists (%s)", path),
		})
	} else {
		results = append(results, CheckResult{
			Status:  statusWarning,
			Message: fmt.Sprintf("Config file not found (%s), using defaults", path),
		})
	}

	results = append(results, CheckResult{
		Status:  statusSuccess,
		Message: fmt.Sprintf("Store reachable (%s)", cfg.Store.Driver),
	})

	if err := env.Driver.Test(ctx); err == nil {
		results = append(results, CheckResult{Status: statusSuccess, Message: "Apache config syntax OK"})
	} else {
		results = append(results, CheckResult{Status: statusError, Message: "Apache config syntax error"})
	}

	return results
}

func checkHosts(ctx context.Context, env *hosting.Env) ([]HostStatus, error) {
	hosts, err := hosting.AllHosts(ctx, env)
	if err != nil {
		return nil, err
	}

	statuses := make([]HostStatus, 0, len(hosts))
	for _, h := range hosts {
		status := HostStatus{Host: h.Host, Client: h.Client}

		if enabled, err := env.Driver.IsEnabled(h.Host); err == nil {
			status.Enabled = enabled
		}
		if !status.Enabled {
			status.Checks = append(status.Checks, CheckResult{Status: statusWarning, Message: "vhost not enabled"})
		}
		if _, err := os.Stat(h.Path); os.IsNotExist(err) {
			status.Checks = append(status.Checks, CheckResult{Status: statusError, Message: "directory missing"})
		}

		if len(status.Checks) == 0 {
			status.Checks = append(status.Checks, CheckResult{Status: statusSuccess, Message: "enabled, directory present"})
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck("", check)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck("", check)
	}
	output.Print("")

	if len(report.Hosts) == 0 {
		output.Print("No hosts recorded")
		return
	}
	output.Print("Checking hosts...")
	for _, h := range report.Hosts {
		for _, check := range h.Checks {
			displayCheck(h.Host+" - ", check)
		}
	}
}

func displayCheck(prefix string, check CheckResult) {
	switch check.Status {
	case statusSuccess:
		output.Success("%s%s", prefix, check.Message)
	case statusWarning:
		output.Warn("%s%s", prefix, check.Message)
	case statusError:
		output.Error("%s%s", prefix, check.Message)
	}
}
