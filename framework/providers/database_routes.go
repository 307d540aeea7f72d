package providers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/database"
	"github.com/km-arc/go-laravel-db/framework/dbcomponent"
	gohttp "github.com/km-arc/go-laravel-db/framework/http"
	"github.com/km-arc/go-laravel-db/framework/logger"
	"github.com/km-arc/go-laravel-db/framework/routing"
	"github.com/km-arc/go-laravel-db/framework/validation"
)

// maxTake caps the page size of the list endpoint.
const maxTake = 500

// databaseController serves the database health check and a small JSON
// API over the bound model accessors.
type databaseController struct {
	app       *container.Container
	component *dbcomponent.Component
}

func newDatabaseController(app *container.Container, comp *dbcomponent.Component) *databaseController {
	return &databaseController{app: app, component: comp}
}

func (dc *databaseController) routes(r *routing.Router) {
	r.Get("/health/database", dc.health)
	r.Prefix("/database/models", func(models *routing.Router) {
		models.Get("/", dc.index)
		models.Get("/{model}", dc.list)
		models.Post("/{model}", dc.create)
		models.Get("/{model}/count", dc.count)
	})
}

func (dc *databaseController) health(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	state := dc.component.State().String()

	client := dc.component.Client()
	if client == nil {
		res.ServiceUnavailable("Database component is not initialized.")
		return
	}
	err := client.Ping(r.Context())
	if errors.Is(err, database.ErrNotConnected) && dc.component.Options().Lazy() {
		res.Success(map[string]any{"status": "ok", "state": state, "connected": false})
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Str("state", state).Msg("database health check failed")
		res.JSON(http.StatusServiceUnavailable, map[string]any{
			"message": "Database unavailable.",
			"state":   state,
		})
		return
	}
	res.Success(map[string]any{"status": "ok", "state": state, "connected": true})
}

func (dc *databaseController) index(w http.ResponseWriter, _ *http.Request) {
	res := gohttp.NewResponse(w)
	client := dc.component.Client()
	if client == nil {
		res.ServiceUnavailable("Database component is not initialized.")
		return
	}
	res.Success(client.ModelNames())
}

func (dc *databaseController) list(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	model, ok := dc.model(res, req.RouteParam("model"))
	if !ok {
		return
	}

	take, skip := req.Query("take", "50"), req.Query("skip", "0")
	v := validation.Make(map[string]string{"take": take, "skip": skip}, validation.Rules{
		"take": "integer|gte:1|lte:" + strconv.Itoa(maxTake),
		"skip": "integer|gte:0",
	})
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}
	t, _ := strconv.ParseUint(take, 10, 64)
	s, _ := strconv.ParseUint(skip, 10, 64)

	records, err := model.FindMany(r.Context(), database.Args{Take: t, Skip: s})
	if err != nil {
		dc.fail(res, r, err)
		return
	}
	res.Success(records)
}

func (dc *databaseController) create(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	model, ok := dc.model(res, req.RouteParam("model"))
	if !ok {
		return
	}

	var data map[string]any
	if err := req.Bind(&data); err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}
	if len(data) == 0 {
		res.Error(http.StatusBadRequest, "Request body must not be empty.")
		return
	}

	record, err := model.Create(r.Context(), data)
	if err != nil {
		dc.fail(res, r, err)
		return
	}
	res.Created(record)
}

func (dc *databaseController) count(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	model, ok := dc.model(res, req.RouteParam("model"))
	if !ok {
		return
	}

	n, err := model.Count(r.Context(), nil)
	if err != nil {
		dc.fail(res, r, err)
		return
	}
	res.Success(map[string]int64{"count": n})
}

// model resolves the accessor bound for name, writing 404 when there is none.
func (dc *databaseController) model(res *gohttp.Response, name string) (*database.Model, bool) {
	key := dbcomponent.ModelKey(dc.component.Options().Models.Namespace, name)
	m, err := container.TryResolve[*database.Model](dc.app, key)
	if err != nil {
		res.NotFound("Unknown model.")
		return nil, false
	}
	return m, true
}

func (dc *databaseController) fail(res *gohttp.Response, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrRecordNotFound):
		res.NotFound()
	case errors.Is(err, database.ErrInvalidColumn):
		res.Error(http.StatusUnprocessableEntity, "Invalid column name.")
	case errors.Is(err, database.ErrUniqueViolation):
		res.Error(http.StatusConflict, "Record already exists.")
	case errors.Is(err, database.ErrConnecting):
		res.ServiceUnavailable("Database unavailable.")
	default:
		logger.FromContext(r.Context()).Err(err).Msg("database request failed")
		res.ServerError()
	}
}
