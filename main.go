package main

import (
	"context"
	"embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/km-arc/go-laravel-db/framework/app"
	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/database"
	"github.com/km-arc/go-laravel-db/framework/dbcomponent"
	gohttp "github.com/km-arc/go-laravel-db/framework/http"
	"github.com/km-arc/go-laravel-db/framework/logger"
	"github.com/km-arc/go-laravel-db/framework/providers"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New() // loads .env automatically
	if err != nil {
		logger.NewLogger("app", false).Fatal().Err(err).Msg("error creating application")
	}
	log := application.Logger()

	if err = application.Register(&providers.DatabaseServiceProvider{Migrations: migrations}); err != nil {
		log.Fatal().Err(err).Msg("error registering database provider")
	}

	// Contributed to the database middleware extension point; attached to
	// the client when the database provider boots.
	if err = dbcomponent.RegisterMiddleware(application.Container, "soft-deletes", softDeletes); err != nil {
		log.Fatal().Err(err).Msg("error registering middleware")
	}

	r := application.Router()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{
			"message": "Welcome to Go-Laravel!",
			"version": application.Version(),
		})
	})

	// GET /users/{id} reads through the model accessor bound by the component.
	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		users, err := container.TryResolve[*database.Model](application.Container, "database.models.user")
		if err != nil {
			res.NotFound("Unknown model.")
			return
		}
		user, err := users.FindFirst(req.Context(), database.Args{
			Where: map[string]any{"id": gohttp.NewRequest(req).RouteParam("id")},
		})
		if err != nil {
			res.NotFound()
			return
		}
		res.Success(user)
	})

	if err = application.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}

// softDeletes hides rows whose deleted_at column is set from reads on
// models that opt in.
func softDeletes(ctx context.Context, p *database.Params, next database.Handler) (any, error) {
	if p.Model == "post" && (p.Action == database.ActionFindMany || p.Action == database.ActionFindFirst) {
		if p.Args.Where == nil {
			p.Args.Where = map[string]any{}
		}
		p.Args.Where["deleted_at"] = nil
	}
	return next(ctx, p)
}
