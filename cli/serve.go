package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aggieseek/seatwatch/log"
	"github.com/aggieseek/seatwatch/server"
	"github.com/spf13/cobra"
)

var (
	portFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			port := cfg.Port
			if portFlag != "" {
				port = portFlag
			}

			router := server.NewRouter(svc, server.Config{
				Port:         port,
				CORSOrigins:  cfg.CORSOrigins,
				IsProduction: cfg.IsProduction(),
				ServiceName:  "seatwatch",
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("Starting server", "port", port, "env", cfg.Env, "cache", cfg.ClassCache.Backend)
			return server.Run(ctx, router, port)
		},
	}
)

func init() {
	serveCmd.Flags().StringVarP(&portFlag, "port", "p", "", "Port to listen on (default $PORT or 8000)")
	rootCmd.AddCommand(serveCmd)
}
