package cli

import (
	"fmt"
	"os"

	"github.com/huimingz/commit-composer/internal/composer"
	"github.com/huimingz/commit-composer/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveLanguage string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the composer over HTTP.

Requests that name no repo_path use the directory the server was started in.

Examples:
  composer serve
  composer serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withInterrupt(cmd.Context())
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc, cleanup, err := newService(ctx, cfg, serveLanguage)
		if err != nil {
			return err
		}
		defer cleanup()

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}

		serverCfg := cfg.GetServerConfig()
		addr := serverCfg.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		h := server.NewHandler(svc, server.Config{
			AllowedOrigins:  serverCfg.AllowedOrigins,
			DefaultRepoPath: cwd,
			DefaultStyle:    composer.ParseStyle(cfg.GetComposerConfig().Style),
		})
		return server.ListenAndServe(ctx, addr, h)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8000)")
	serveCmd.Flags().StringVarP(&serveLanguage, "language", "l", "", languageFlagUsage())
	rootCmd.AddCommand(serveCmd)
}
