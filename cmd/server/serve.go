package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetdash/internal/api"
)

var (
	serveAddr  string
	serveData  string
	serveSheet string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}

		h := api.NewHandler(cfg, log)
		e := api.NewServer(h)

		// The API is live immediately; a preloaded dataset shows up once parsed.
		if serveData != "" {
			go func() {
				log.Info("loading dataset in background", zap.String("path", serveData))
				t0 := time.Now()
				id, err := h.LoadFile(serveData, serveSheet)
				if err != nil {
					log.Error("background load failed", zap.String("path", serveData), zap.Error(err))
					return
				}
				log.Info("dataset ready", zap.String("id", id), zap.Duration("elapsed", time.Since(t0)))
			}()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- e.Start(cfg.Addr) }()
		log.Info("server ready", zap.String("addr", cfg.Addr))

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveData, "data", "", "spreadsheet to load at startup")
	serveCmd.Flags().StringVar(&serveSheet, "sheet", "", "worksheet of --data (default first)")
	rootCmd.AddCommand(serveCmd)
}
