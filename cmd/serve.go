package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sitegen/internal/config"
	"sitegen/internal/server"
	"sitegen/internal/transport"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			slog.Debug("no .env file loaded", "err", err)
		}

		cfg, err := config.Load(serveConfigPath)
		if err != nil {
			return err
		}

		if servePort != 0 {
			if servePort <= 0 || servePort > 65535 {
				return fmt.Errorf("port override %d must be a valid TCP port", servePort)
			}
			cfg.Server.Port = servePort
		}

		clients := transport.NewClientRegistry(cfg.Generation)

		srv, err := server.New(cfg, clients)
		if err != nil {
			return err
		}

		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to YAML configuration file (defaults apply when omitted)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override server port from configuration")
}
