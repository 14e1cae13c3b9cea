// Command searchbase queries a Searchbase service from the terminal: single
// searches, full result-set exports, and version info.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/searchbase-dev/searchbase-go/pkg/client"
	"github.com/searchbase-dev/searchbase-go/pkg/logging"
)

// rootOptions carries the connection settings shared by all subcommands.
type rootOptions struct {
	addr     string
	token    string
	logLevel string
	pretty   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "searchbase",
		Short:         "Query a Searchbase indexed-search service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(opts.logLevel),
				Pretty: opts.pretty,
				Output: os.Stderr,
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.addr, "addr", getEnv("SEARCHBASE_ADDR", client.DefaultBaseURL), "Searchbase API address")
	flags.StringVar(&opts.token, "token", os.Getenv("SEARCHBASE_TOKEN"), "API token (env: SEARCHBASE_TOKEN)")
	flags.StringVar(&opts.logLevel, "log-level", string(logging.LevelWarn), "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.pretty, "pretty", false, "human-readable log output")

	rootCmd.AddCommand(
		newSearchCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// newClient builds the API client from the root options.
func (o *rootOptions) newClient() (*client.Client, error) {
	cfg := client.DefaultConfig(o.token)
	cfg.BaseURL = o.addr
	return client.New(cfg)
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "searchbase-go %s\n", client.Version)
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
