package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"catalogo/internal/bootstrap"
	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/errs"
	cacheinfra "catalogo/internal/infrastructure/cache"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the moderation, follow and notification HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		migrate, _ := cmd.Flags().GetBool("migrate")
		if migrate {
			if err := app.InitSchema(ctx); err != nil {
				return errs.Wrap(err, "initialize schema")
			}
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = app.Config.HTTP.Addr
		}

		baseCtx := ctx
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if sqliteCache, ok := svc.Cache.(*cacheinfra.SQLiteCache); ok {
			go purgeCacheLoop(ctx, sqliteCache, time.Minute)
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           svc.Handler,
			ReadTimeout:       app.Config.HTTP.ReadTimeout,
			ReadHeaderTimeout: app.Config.HTTP.ReadTimeout,
			WriteTimeout:      app.Config.HTTP.WriteTimeout,
			BaseContext:       func(_ net.Listener) context.Context { return baseCtx },
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server started", slog.String("addr", addr))
			serveErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "http server failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve http")
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info(ctx, "http server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func purgeCacheLoop(ctx context.Context, store *cacheinfra.SQLiteCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := store.PurgeExpired(ctx)
			if err != nil {
				logging.Warn(ctx, "purge expired cache entries failed", slog.Any("err", errs.Loggable(err)))
				continue
			}
			if purged > 0 {
				logging.Debug(ctx, "purged expired cache entries", slog.Int64("count", purged))
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to http.addr from config)")
	serveCmd.Flags().Bool("migrate", true, "Run schema migration before serving")
}
