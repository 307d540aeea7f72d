package dbcomponent

//go:generate mockgen -source=client.go -destination=mock/client_mock.go -package=mock

import (
	"context"

	"github.com/km-arc/go-laravel-db/framework/database"
	"github.com/km-arc/go-laravel-db/framework/logger"
)

// Client is the database client the component manages. *database.Client
// implements it.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	Use(mw database.Middleware)
	ModelNames() []string
	Model(name string) (*database.Model, error)
}

var _ Client = (*database.Client)(nil)

// ClientFactory builds a Client from options when none is bound.
type ClientFactory func(opts database.ClientOptions, log *logger.Logger) (Client, error)

// NewDatabaseClient is the default ClientFactory.
func NewDatabaseClient(opts database.ClientOptions, log *logger.Logger) (Client, error) {
	client, err := database.New(opts, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}
