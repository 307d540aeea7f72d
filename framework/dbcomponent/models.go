package dbcomponent

import "github.com/km-arc/go-laravel-db/framework/container"

// BindModel binds accessor as a constant at <opts.Namespace>.<name> and tags
// it with opts.Tag.
//
//	users, _ := client.Model("user")
//	err := dbcomponent.BindModel(app, "user", users, opts.Models)
//	// container.Resolve[*database.Model](app, "database.models.user")
func BindModel(app *container.Container, name string, accessor any, opts ModelOptions) error {
	key := ModelKey(opts.Namespace, name)
	if err := app.Instance(key, accessor); err != nil {
		return err
	}
	return app.Tag([]string{key}, opts.Tag)
}
