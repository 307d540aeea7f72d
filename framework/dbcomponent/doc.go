// Package dbcomponent plugs a database client into the application container.
//
// A Component owns the client's lifecycle:
//
//	Uninitialized ──Init──▶ Initialized ──Start──▶ Started ──Stop──▶ Stopped
//	                                      ◀────────Start─────────────┘
//
// New merges the supplied Options over the defaults and binds them at
// OptionsKey. Init resolves the client bound at ClientKey (or builds one
// from the options), locks both bindings, attaches every middleware
// contributed to the MiddlewareExtensionPoint and binds one accessor per
// model under Options.Models.Namespace. Middleware contributed after Init is
// attached as soon as it is tagged, then locked.
//
//	comp, err := dbcomponent.New(app, nil, dbcomponent.Options{
//	    Client: database.ClientOptions{Driver: database.DriverPgx, DSN: dsn},
//	})
//	_ = dbcomponent.RegisterMiddleware(app, "audit", auditMiddleware)
//	if err := comp.Start(ctx); err != nil { ... }
//	defer comp.Stop(ctx)
//
//	users := container.Resolve[*database.Model](app, "database.models.user")
package dbcomponent
