package providers

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"

	"flighttrack/internal/structures"
)

const maxCacheSizeMB = 4096

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct tag rules and then the driver specific requirements.
func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	storage := c.conf.Storage
	switch storage.Driver {
	case "sqlite":
		if storage.Sqlite.Path == "" {
			return errors.New("storage.sqlite.path is required for the sqlite driver")
		}
	case "mongo":
		if storage.Mongo.URI == "" {
			return errors.New("storage.mongo.uri is required for the mongo driver")
		}
		if storage.Mongo.Database == "" || storage.Mongo.ActiveCollection == "" || storage.Mongo.ArchiveCollection == "" {
			return errors.New("storage.mongo database and collections must be set")
		}
	case "postgres":
		if storage.Postgres.DSN == "" {
			return errors.New("storage.postgres.dsn is required for the postgres driver")
		}
	}
	if storage.Timeout < 0 {
		return errors.New("storage.timeout must not be negative")
	}
	if storage.Snapshot.FilePath != "" && storage.Snapshot.SaveInterval <= 0 {
		return errors.New("storage.snapshot.saveInterval must be positive")
	}

	if c.conf.Cache.Size < 0 || c.conf.Cache.Size > maxCacheSizeMB {
		return fmt.Errorf("cache.size is in MB and must be between 0 and %d", maxCacheSizeMB)
	}

	if c.conf.Events.Enabled && (c.conf.Events.URL == "" || c.conf.Events.Subject == "") {
		return errors.New("events.url and events.subject are required when events are enabled")
	}
	return nil
}
