// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ontomap/internal/health"
	"github.com/pdiddy/ontomap/internal/services"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the terminology services and report their status",
	Long: `Health checks basic network reachability, sends a minimal search to each
terminology service, and prints a per-service status report with circuit
breaker state and failure counts.`,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	defer logger.Sync()

	cfg := loadConfig()
	s, err := buildStack(cfg, logger)
	if err != nil {
		return err
	}

	netOK := true
	if cfg.NetworkCheck.Enabled {
		netOK = health.NetworkReachable("", cfg.NetworkCheck.Timeout)
	}

	if noProbe, _ := cmd.Flags().GetBool("no-probe"); !noProbe && netOK {
		probeServices(cfg.HTTP.Timeout, s)
	}

	report := s.registry.HealthReport()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			NetworkReachable bool          `json:"network_reachable"`
			Report           health.Report `json:"report"`
		}{netOK, report})
	}

	if !netOK {
		fmt.Println("Network: UNREACHABLE (service probes skipped)")
	} else {
		fmt.Println("Network: ok")
	}
	fmt.Println()

	names := make([]string, 0, len(report.Services))
	for name := range report.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		status := report.Services[name]
		state := "ok"
		if !status.Available {
			state = "UNAVAILABLE"
		}
		fmt.Printf("%-10s  %s\n", name, state)
		fmt.Printf("    enabled: %v, consecutive failures: %d\n",
			status.Enabled, status.ConsecutiveFailures)
		if status.CircuitBreaker != nil {
			fmt.Printf("    breaker: %s (%d/%d failures)\n",
				status.CircuitBreaker.State,
				status.CircuitBreaker.FailureCount,
				status.CircuitBreaker.Threshold)
		}
	}

	fmt.Printf("\n%d/%d services available\n",
		report.Summary.AvailableServices, report.Summary.TotalServices)
	return nil
}

// probeServices sends a minimal search to each service and records the
// outcome in the registry. Probe failures are reflected in the report, not
// returned.
func probeServices(timeout time.Duration, s *stack) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	for _, client := range []services.Client{s.bioportal, s.ols} {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		_, err := client.Search(ctx, "disease", "MONDO", 1)
		cancel()
		if err != nil {
			s.registry.MarkFailure(client.Name())
			continue
		}
		s.registry.MarkSuccess(client.Name())
	}
}

var healthDisableCmd = &cobra.Command{
	Use:   "disable [service]",
	Short: "Exclude a service from lookups",
	Long: `Disable records the service in the config file's disabled_services list.
Disabled services are skipped by every subsequent lookup until re-enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := serviceArg(args[0])
		if err != nil {
			return err
		}
		cfg := loadConfig()
		for _, d := range cfg.DisabledServices {
			if d == name {
				fmt.Printf("%s is already disabled\n", name)
				return nil
			}
		}
		if err := persistDisabled(append(cfg.DisabledServices, name)); err != nil {
			return err
		}
		fmt.Printf("Disabled %s\n", name)
		return nil
	},
}

var healthEnableCmd = &cobra.Command{
	Use:   "enable [service]",
	Short: "Re-include a disabled service in lookups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := serviceArg(args[0])
		if err != nil {
			return err
		}
		cfg := loadConfig()
		kept := cfg.DisabledServices[:0]
		found := false
		for _, d := range cfg.DisabledServices {
			if d == name {
				found = true
				continue
			}
			kept = append(kept, d)
		}
		if !found {
			fmt.Printf("%s is not disabled\n", name)
			return nil
		}
		if err := persistDisabled(kept); err != nil {
			return err
		}
		fmt.Printf("Enabled %s\n", name)
		return nil
	},
}

var healthResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear disabled-service state",
	Long: `Reset empties the disabled_services list so every service is eligible for
lookups again. Circuit breaker state is per process and needs no reset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loadConfig()
		if err := persistDisabled([]string{}); err != nil {
			return err
		}
		fmt.Println("All services enabled")
		return nil
	},
}

// serviceArg validates a service-name argument.
func serviceArg(arg string) (string, error) {
	switch arg {
	case "bioportal", "ols":
		return arg, nil
	default:
		return "", fmt.Errorf("unknown service %q: use bioportal or ols", arg)
	}
}

// persistDisabled writes the disabled-service list back to the config file,
// creating ontomap.yaml in the working directory when none is in use.
func persistDisabled(disabled []string) error {
	viper.Set("disabled_services", disabled)
	if viper.ConfigFileUsed() != "" {
		return viper.WriteConfig()
	}
	return viper.SafeWriteConfigAs("ontomap.yaml")
}

func init() {
	healthCmd.Flags().Bool("json", false, "output the report as JSON")
	healthCmd.Flags().Bool("no-probe", false, "report configuration only, without contacting the services")

	healthCmd.AddCommand(healthDisableCmd)
	healthCmd.AddCommand(healthEnableCmd)
	healthCmd.AddCommand(healthResetCmd)
	rootCmd.AddCommand(healthCmd)
}
