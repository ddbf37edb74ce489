package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "brave-mcp",
	Short: "Brave browser automation over the Model Context Protocol",
	Long: `brave-mcp launches and supervises a Brave browser and exposes it to MCP
clients as tools. Connections fall back through progressively simpler launch
strategies, stale sessions are replaced transparently, and repeated failures
trip a circuit breaker.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addSettingsFlags(rootCmd.PersistentFlags())
}

// addSettingsFlags declares the flags read by loadSettings.
func addSettingsFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Settings file (default ~/.brave-mcp/config.json or $BRAVE_MCP_CONFIG)")
	fs.String("env-file", ".env", "Environment file loaded before reading settings; set variables win")
	fs.String("profile", "", "YAML launch profile")
	fs.String("executable", "", "Browser executable (overrides BRAVE_PATH)")
	fs.Bool("headless", false, "Run the browser headless (overrides HEADLESS)")
	fs.Duration("connect-timeout", 0, "Per-strategy connect timeout")
	fs.Int("port-start", 0, "First debugging port to try")
	fs.Int("port-end", 0, "Last debugging port to try")
}
