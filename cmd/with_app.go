package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"catalogo/internal/bootstrap"
	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/errs"
	gormrepo "catalogo/internal/infrastructure/persistence/gormstore/repository"
	"catalogo/internal/ports"
	"catalogo/internal/usecase/follow"
	"catalogo/internal/usecase/moderation"
	"catalogo/internal/usecase/notification"
)

// services is everything a command may reach once the fx graph is started.
type services struct {
	Moderation    *moderation.Service
	Follows       *follow.Service
	Notifications *notification.Service
	Users         ports.UserRepository
	Reviews       ports.ReviewRepository
	Cache         ports.Cache
	Handler       http.Handler
}

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, svc services) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var (
			app   *bootstrap.App
			svc   services
			store *gormrepo.ModerationRepository
		)
		fxApp := fx.New(
			bootstrap.Module,
			fx.NopLogger,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(
				&app,
				&svc.Moderation,
				&svc.Follows,
				&svc.Notifications,
				&svc.Users,
				&svc.Cache,
				&svc.Handler,
				&store,
			),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		svc.Reviews = store
		cmd.SetContext(logging.WithLogger(cmd.Context(), app.Logger))

		if err := run(cmd, app, svc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
