package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bits/internal/app"
)

var (
	servePort string
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		seeded, err := a.Migrate(ctx, serveSeed)
		if err != nil {
			return err
		}
		if seeded > 0 {
			logger.Info("seeded sample incidents", zap.Int("count", seeded))
		}

		server := cfg.Server
		if servePort != "" {
			server.Port = servePort
		}

		srv := &http.Server{
			Addr:         server.Addr(),
			Handler:      a.Router(),
			ReadTimeout:  server.ReadTimeout,
			WriteTimeout: server.WriteTimeout,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("starting server",
				zap.String("addr", srv.Addr),
				zap.String("database", cfg.Database.Driver),
				zap.Bool("redis", a.RedisClient != nil),
				zap.Bool("newrelic", a.NewRelicApp != nil),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "record sample incidents when the ledger is empty")
	rootCmd.AddCommand(serveCmd)
}
