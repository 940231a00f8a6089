package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huimingz/commit-composer/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigTemplate = `# Commit Composer Configuration File

# Language for generated messages (en, zh, zh-tw, ja, ko)
language: en

# Default model to use (must match a key in the models section)
default_model: gemini

# LLM Model configurations
models:
  # Google Gemini (default)
  gemini:
    provider: gemini
    api_key: ${GEMINI_API_KEY}
    model: gemini-1.5-flash

  # Deepseek
  # deepseek:
  #   provider: deepseek
  #   api_key: ${DEEPSEEK_API_KEY}
  #   model: deepseek-chat

  # OpenAI
  # openai:
  #   provider: openai
  #   api_key: ${OPENAI_API_KEY}
  #   model: gpt-4o-mini

  # Ollama (local)
  # ollama:
  #   provider: ollama
  #   model: llama3.2
  #   base_url: http://localhost:11434/v1

  # xAI Grok
  # grok:
  #   provider: grok
  #   api_key: ${XAI_API_KEY}
  #   model: grok-beta

# Retry policy for model calls
retry:
  enabled: true
  max_attempts: 2
  backoff_base: 1.0
  backoff_max: 8.0

# Message generation
composer:
  timeout: 60       # seconds per model call
  style: concise    # default style for regeneration: concise, detailed, emoji

# Message history (SQLite)
history:
  path: ~/.composer/commit_history.db

# HTTP API (composer serve)
server:
  addr: ":8000"
  allowed_origins:
    - http://localhost:3000
    - http://localhost:5173
`

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize Commit Composer configuration",
	Long: `Create a default configuration file (~/.composer.yaml).

This command creates a template configuration file with example settings
for the supported LLM providers. Edit the file to add your API keys and customize settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		configPath := filepath.Join(homeDir, config.FileName)

		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", configPath)
		}

		err = os.WriteFile(configPath, []byte(defaultConfigTemplate), 0600)
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Configuration file created: %s\n", configPath)
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  1. Set GEMINI_API_KEY in your environment or a .env file")
		fmt.Fprintln(out, "  2. Stage your changes with 'git add'")
		fmt.Fprintln(out, "  3. Run 'composer commit' to generate a commit message")
		fmt.Fprintf(out, "\nSupported providers: %s\n", strings.Join(config.SupportedProviders(), ", "))

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
