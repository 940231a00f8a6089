package cli

import (
	"github.com/huimingz/commit-composer/internal/config"
	"github.com/huimingz/commit-composer/internal/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	debugMode  bool
	configFile string
	modelName  string

	// Version info
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "composer",
	Short: "AI-powered commit message composer",
	Long: `Commit Composer reads your staged changes and writes a Conventional
Commits message for them. Every generated message is kept in a local history.

It can also serve the same features over HTTP for editor and web integrations.

Use "composer [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()

		// Set debug mode before any command runs
		if debugMode {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, commit, time string) {
	version = v
	gitCommit = commit
	buildTime = time
}

// GetVersionInfo returns version information
func GetVersionInfo() (string, string, string) {
	return version, gitCommit, buildTime
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode for verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./.composer.yaml, then ~/.composer.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "LLM model to use (overrides config)")
}
