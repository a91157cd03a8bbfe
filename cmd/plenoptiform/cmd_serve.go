package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caelisco/plenoptiform/config"
	"github.com/caelisco/plenoptiform/internal/demo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listenAddr string

var serveDemoCmd = &cobra.Command{
	Use:   "serve-demo",
	Short: "Serve the plenoptisign endpoint locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mux := http.NewServeMux()
		mux.Handle("/"+config.DefaultEndpoint, &demo.Handler{Logger: logger})

		srv := &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("serving demo endpoint", zap.String("addr", listenAddr), zap.String("path", "/"+config.DefaultEndpoint))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveDemoCmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:8000", "listen address")
}
