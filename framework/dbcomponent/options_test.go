package dbcomponent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-laravel-db/framework/database"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, database.DriverSQLite, o.Client.Driver)
	assert.False(t, o.Lazy())
	assert.Equal(t, "database.models", o.Models.Namespace)
	assert.Equal(t, "databaseModel", o.Models.Tag)
	assert.NoError(t, o.Validate())
}

func TestMergeOptions_LaterLayersWin(t *testing.T) {
	got, err := mergeOptions(
		Options{Client: database.ClientOptions{Driver: database.DriverPgx, Models: map[string]string{"user": "users"}}},
		Options{Client: database.ClientOptions{DSN: "postgres://localhost/app", Models: map[string]string{"post": "posts"}}},
	)
	require.NoError(t, err)

	assert.Equal(t, database.DriverPgx, got.Client.Driver)
	assert.Equal(t, "postgres://localhost/app", got.Client.DSN)
	assert.Equal(t, map[string]string{"user": "users", "post": "posts"}, got.Client.Models)
	assert.Equal(t, DefaultModelTag, got.Models.Tag)
}

func TestMergeOptions_ExplicitFalseOverridesLazyConnect(t *testing.T) {
	lower := Options{LazyConnect: Bool(true)}

	got, err := mergeOptions(lower, Options{})
	require.NoError(t, err)
	assert.True(t, got.Lazy(), "unset layer keeps the value below")

	got, err = mergeOptions(lower, Options{LazyConnect: Bool(false)})
	require.NoError(t, err)
	assert.False(t, got.Lazy())
	assert.True(t, *lower.LazyConnect, "layers are not written through")
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Options)
		field string
	}{
		{"unknown driver", func(o *Options) { o.Client.Driver = "mysql" }, "driver"},
		{"negative pool", func(o *Options) { o.Client.MaxOpenConns = -1 }, "max_open_conns"},
		{"bad namespace", func(o *Options) { o.Models.Namespace = "1 models" }, "namespace"},
		{"bad tag", func(o *Options) { o.Models.Tag = "model tag" }, "tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.edit(&o)
			err := o.Validate()
			assert.ErrorIs(t, err, ErrInvalidOptions)
			assert.ErrorContains(t, err, tt.field)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Uninitialized", StateUninitialized.String())
	assert.Equal(t, "Initialized", StateInitialized.String())
	assert.Equal(t, "Started", StateStarted.String())
	assert.Equal(t, "Stopped", StateStopped.String())
	assert.Equal(t, "State(9)", State(9).String())

	assert.False(t, StateUninitialized.Initialized())
	assert.True(t, StateStopped.Initialized())
}
