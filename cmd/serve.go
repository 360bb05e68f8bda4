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

	"github.com/kakomon/kakomon/internal/api"
	"github.com/kakomon/kakomon/internal/config"
	"github.com/kakomon/kakomon/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long:  "Serve the study API over HTTP. Requests must carry an HS256 bearer token whose sub claim is the learner id.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		log, err := logger.New(logger.Options{Mode: cfg.LogMode, HashSalt: cfg.LogSalt})
		if err != nil {
			return err
		}
		defer log.Sync()

		st, err := openStore(cmd)
		if err != nil {
			log.Error("failed to open database", "error", err)
			return err
		}
		defer st.Close()

		handler := api.NewHandler(st, log)
		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.NewRouter(handler, cfg.JWTSecret),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting server", "address", cfg.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.Error("server failed to start", "error", err)
				return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		log.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides "+config.EnvAddr+")")
}
