package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pex/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}

			slog.Info("configuration loaded",
				"addr", cfg.Server.Addr(),
				"upload_max_concurrent", cfg.Upload.MaxConcurrent,
				"upload_max_file_size", cfg.Upload.MaxFileSize,
				"rate_limit_per_minute", cfg.Server.RequestsPerMinute,
				"require_api_key", cfg.Security.RequireAPIKey,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return web.Run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from PEX_SERVER_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from PEX_SERVER_PORT)")
	return cmd
}
