//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"flighttrack/internal"
	"flighttrack/internal/controllers"
	"flighttrack/internal/events"
	"flighttrack/internal/providers"
	"flighttrack/internal/services"
	"flighttrack/internal/storage"
	"flighttrack/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewZstdCompressor,
		storage.NewStores,
		storage.ProvideActiveTrackStore,
		storage.ProvideArchiveStore,
		storage.NewSnapshotManager,
		storage.NewScheduler,
		events.NewPublisher,

		services.NewFlightLocker,
		services.NewFlightArchiver,
		services.NewTrackQueryEngine,
		services.NewTrackService,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}
