package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nalanda-edu/nalanda/internal/api"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the grading and wallet HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.HTTP.Addr = addr
		}

		handler := api.NewServer(e.wallets, e.log).Router(api.Options{
			AllowedOrigins: e.cfg.HTTP.CORSOrigins,
			Timeout:        e.cfg.HTTP.WriteTimeout,
		})
		srv := &http.Server{
			Addr:              e.cfg.HTTP.Addr,
			Handler:           handler,
			ReadTimeout:       e.cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: e.cfg.HTTP.ReadTimeout,
			WriteTimeout:      e.cfg.HTTP.WriteTimeout + time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			e.log.Info("server starting", "addr", srv.Addr, "driver", e.cfg.DB.Driver)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		e.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides NALANDA_HTTP_ADDR)")
}
