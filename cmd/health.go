package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/vitrine/internal/errors"
)

// HealthStatus is the body of the server's /health endpoint.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck is one entry of HealthStatus.Checks.
type HealthCheck struct {
	Status  string `json:"status"`
	Active  *int   `json:"active,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of a running vitrine server",
	Long: `Query the /health endpoint of a running server and report its status,
active sessions and loaded testimonials. Exits non-zero when the server is
unreachable or not healthy.

This command is used by container health checks and deployment readiness probes.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
	RunE: runHealthCheck,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	AddStandardFlags(healthCmd, "server", "output")
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 3*time.Second, "Timeout for the health request")
}

func runHealthCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	url := "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)) + "/health"

	status, err := fetchHealth(commandContext(cmd), url, healthTimeout)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeServerUnhealthy, "health check failed", err).
			WithContext("url", url)
	}

	if outputFormat(cmd) == "json" {
		if err := writeJSON(cmd.OutOrStdout(), status); err != nil {
			return err
		}
	} else {
		printHealth(cmd, status)
	}

	if status.Status != "healthy" {
		return errors.NewNetworkError(errors.ErrCodeServerUnhealthy,
			fmt.Sprintf("server is %s", status.Status), nil)
	}
	return nil
}

func printHealth(cmd *cobra.Command, status *HealthStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (version %s, up %s)\n", status.Status, status.Version, status.Uptime)
	if c, ok := status.Checks["sessions"]; ok && c.Active != nil {
		fmt.Fprintf(out, "  sessions: %d active\n", *c.Active)
	}
	if c, ok := status.Checks["testimonials"]; ok && c.Count != nil {
		fmt.Fprintf(out, "  testimonials: %d\n", *c.Count)
	}
	if c, ok := status.Checks["watcher"]; ok && c.Enabled != nil {
		fmt.Fprintf(out, "  content watching: %t\n", *c.Enabled)
	}
}

// fetchHealth requests url and decodes the health body. A 503 still carries
// a body, so the status code is only checked when decoding fails.
func fetchHealth(ctx context.Context, url string, timeout time.Duration) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("unexpected response %s: %w", resp.Status, err)
	}
	return &status, nil
}
