// Package cli wires the cobra command tree for the casegraph binary.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openintel/casegraph/internal/config"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const defaultConfigPath = "./casegraph.yaml"

type rootOptions struct {
	configPath string
	serverAddr string
	timeout    time.Duration
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "casegraph",
		Short:         "Intelligence and geospatial correlation engine for case data",
		Long:          "casegraph correlates incident case files across space, time and\nbehavioral fingerprints, exposing related-case search, repeat-offender\ndetection, risk scoring and geospatial heatmap/cluster analysis over HTTP.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path (default: ./casegraph.yaml, else environment)")
	pf.StringVar(&opts.serverAddr, "server", "http://localhost:8080", "API server address for query commands")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout for query commands")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newRelatedCmd(opts),
		newRiskCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// loadConfig resolves configuration with priority: --config flag, the default
// file when present, then CASEGRAPH_* environment variables. The returned
// path is empty when the configuration came from the environment.
func loadConfig(opts *rootOptions) (*config.Config, string, error) {
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		return cfg, opts.configPath, err
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		cfg, err := config.Load(defaultConfigPath)
		return cfg, defaultConfigPath, err
	}
	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// Execute runs the root command and reports failures on stderr.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return err
	}
	return nil
}
