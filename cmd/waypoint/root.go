package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"waypoint/internal/config"
	"waypoint/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is the loaded workspace configuration, available to every
// subcommand after PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Mine scenario specs into a reusable library and rank routes to a target page",
	Long: "Waypoint mines Given/When/Then specification files into a base-scenario\n" +
		"library, resolves which application page a new requirement targets using\n" +
		"the navigation graph, and ranks existing scenarios by how well they reach\n" +
		"that target — adjusted by accumulated approve/reject feedback.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		cfg, err = config.Load(rootFlags.configPath)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Config file (default: waypoint.yaml if present)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
