package storage

import (
	"context"
	"fmt"
	"time"

	"flighttrack/internal/providers"
	"flighttrack/internal/storage/interfaces"
	"flighttrack/internal/structures"
)

// Open connects the backend selected by storage.driver.
func Open(ctx context.Context, conf *structures.Config, compressor interfaces.CompressorInterface) (*Stores, error) {
	switch conf.Storage.Driver {
	case DriverMemory, "":
		mem := NewMemoryStore()
		return &Stores{Driver: DriverMemory, Active: mem, Archive: mem, Memory: mem}, nil
	case DriverSqlite:
		s, err := OpenSQLite(conf.Storage.Sqlite.Path, compressor)
		if err != nil {
			return nil, err
		}
		return &Stores{Driver: DriverSqlite, Active: s, Archive: s, close: s.Close}, nil
	case DriverMongo:
		s, err := OpenMongo(ctx, conf.Storage.Mongo)
		if err != nil {
			return nil, err
		}
		return &Stores{Driver: DriverMongo, Active: s, Archive: s, close: s.Close}, nil
	case DriverPostgres:
		s, err := OpenPostgres(ctx, conf.Storage.Postgres)
		if err != nil {
			return nil, err
		}
		return &Stores{Driver: DriverPostgres, Active: s, Archive: s, close: s.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}

// NewStores opens and instruments the configured backend. The returned cleanup closes it.
func NewStores(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, compressor interfaces.CompressorInterface) (*Stores, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout(conf))
	defer cancel()

	stores, err := Open(ctx, conf, compressor)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage: %w", conf.Storage.Driver, err)
	}
	logger.Infof(providers.TypeApp, "Storage driver %s ready", stores.Driver)

	cleanup := func() {
		if err := stores.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Error closing %s storage: %s", stores.Driver, err)
		}
	}
	return Instrument(stores, conf.Storage.Timeout, metrics), cleanup, nil
}

func connectTimeout(conf *structures.Config) time.Duration {
	if conf.Storage.Timeout > 0 {
		return 2 * conf.Storage.Timeout
	}
	return 10 * time.Second
}

func ProvideActiveTrackStore(stores *Stores) ActiveTrackStore {
	return stores.Active
}

func ProvideArchiveStore(stores *Stores) ArchiveStore {
	return stores.Archive
}
