// Command studio-bridge runs the Roblox Studio MCP bridge: a stdio
// JSON-RPC server for the AI client paired with an HTTP long-poll bridge
// for the Studio plugin.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "studio-bridge",
	Short: "MCP bridge between an AI client and Roblox Studio",
	Long: `studio-bridge connects an MCP client (over stdio) to a Roblox Studio
plugin (over HTTP long-polling), routing tool calls and relaying logs,
playtest state, and capture events between the two.`,
}

func init() {
	rootCmd.PersistentFlags().Int("port", 3300, "HTTP bridge port")
	rootCmd.PersistentFlags().String("token", "", "bearer token required of the plugin (generated if empty)")
	rootCmd.PersistentFlags().String("capture_dir", "", "directory for screenshot/video capture output")
	rootCmd.PersistentFlags().String("log_level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the studio-bridge version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
