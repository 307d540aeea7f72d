package dbcomponent

import (
	"fmt"
	"reflect"
	"strconv"

	"dario.cat/mergo"

	"github.com/km-arc/go-laravel-db/framework/database"
	"github.com/km-arc/go-laravel-db/framework/validation"
)

// Default values applied by DefaultOptions.
const (
	DefaultModelNamespace = "database.models"
	DefaultModelTag       = "databaseModel"
)

// ModelOptions controls how model accessors are bound.
type ModelOptions struct {
	// Namespace prefixes every accessor key: <Namespace>.<model>.
	Namespace string
	// Tag is carried by every accessor binding.
	Tag string
}

// Options configures a Component. Once Init has run the options binding is
// locked.
type Options struct {
	Client database.ClientOptions
	// LazyConnect makes Start return without connecting; the client
	// connects on the first model operation instead. nil leaves the layer
	// below in place, so an explicit Bool(false) can switch it off.
	LazyConnect *bool
	Models      ModelOptions
}

// Bool returns a pointer to v, for the optional fields of Options.
func Bool(v bool) *bool { return &v }

// Lazy reports whether LazyConnect is set and true.
func (o Options) Lazy() bool {
	return o.LazyConnect != nil && *o.LazyConnect
}

// DefaultOptions returns the options every Component starts from.
func DefaultOptions() Options {
	return Options{
		Client:      database.ClientOptions{Driver: database.DriverSQLite},
		LazyConnect: Bool(false),
		Models: ModelOptions{
			Namespace: DefaultModelNamespace,
			Tag:       DefaultModelTag,
		},
	}
}

// mergeOptions layers each of layers over DefaultOptions. Zero fields of a
// layer leave the value below in place; a non-nil *bool always wins.
func mergeOptions(layers ...Options) (Options, error) {
	merged := DefaultOptions()
	for _, layer := range layers {
		if err := mergo.Merge(&merged, layer, mergo.WithOverride, mergo.WithTransformers(boolPtrTransformer{})); err != nil {
			return Options{}, fmt.Errorf("merging database options: %w", err)
		}
	}
	return merged, nil
}

// boolPtrTransformer copies set *bool fields, false included. mergo would
// otherwise merge through the pointer and skip false as a zero value.
type boolPtrTransformer struct{}

func (boolPtrTransformer) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != reflect.TypeOf((*bool)(nil)) {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if src.IsNil() || !dst.CanSet() {
			return nil
		}
		v := src.Elem().Bool()
		dst.Set(reflect.ValueOf(&v))
		return nil
	}
}

// Validate checks the options with the framework validator.
func (o Options) Validate() error {
	v := validation.Make(map[string]string{
		"driver":         o.Client.Driver,
		"max_open_conns": strconv.Itoa(o.Client.MaxOpenConns),
		"max_idle_conns": strconv.Itoa(o.Client.MaxIdleConns),
		"namespace":      o.Models.Namespace,
		"tag":            o.Models.Tag,
	}, validation.Rules{
		"driver":         "required|in:" + database.DriverPgx + "," + database.DriverSQLite,
		"max_open_conns": "integer|gte:0",
		"max_idle_conns": "integer|gte:0",
		"namespace":      `required|regex:^[A-Za-z][A-Za-z0-9_.-]*$`,
		"tag":            "required|alpha_dash",
	})
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}
