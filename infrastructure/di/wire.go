//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"castfeed-backend/application/commands/bus"
	"castfeed-backend/application/ports"
	querybus "castfeed-backend/application/queries/bus"
	"castfeed-backend/application/services"
	"castfeed-backend/infrastructure/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Repositories *Repositories
	EventBus     ports.EventBus
	Ledger       *services.EngagementLedger
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideRepositories,
	ProvideMediaSigner,
	ProvideFeedStrategy,
	ProvideFeedMaterializer,
	ProvideEventBus,
	ProvideEngagementLedger,
	ProvideCastResolver,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
