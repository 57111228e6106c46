package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/khrees2412/jobseeker/internal/api"
	"github.com/khrees2412/jobseeker/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long:  "Serve the accounts, job tracker and upskill operations as a JSON API",
	Example: `  jobseeker serve
  jobseeker serve --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		addr := a.Config.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewRouter(a).Setup(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(cmd.Context(), srv, a)
	},
}

// runServer serves until ctx is cancelled, then drains open requests and
// pending XP awards
func runServer(ctx context.Context, srv *http.Server, a *app.App) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("http server shutdown failed", zap.Error(err))
		return err
	}
	a.Ledger.Wait()
	a.Logger.Info("http server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
