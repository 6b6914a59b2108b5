package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"flighttrack/internal/structures"
)

const AppName = "FlightTrack"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.timeout", 5*time.Second)
	v.SetDefault("storage.mongo.database", "FlightTrackerDB")
	v.SetDefault("storage.mongo.activeCollection", "current_flight_locations")
	v.SetDefault("storage.mongo.archiveCollection", "flight_logs")
	v.SetDefault("storage.postgres.maxConns", 10)
	v.SetDefault("storage.snapshot.saveInterval", 30*time.Second)
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("events.subject", "flight.archived")

	_ = v.BindEnv("logger.level", "FT_LOG_LEVEL")
	_ = v.BindEnv("logger.dir", "FT_LOG_DIR")
	_ = v.BindEnv("storage.driver", "FT_STORAGE_DRIVER")
	_ = v.BindEnv("storage.sqlite.path", "FT_SQLITE_PATH")
	_ = v.BindEnv("storage.mongo.uri", "FT_MONGO_URI")
	_ = v.BindEnv("storage.postgres.dsn", "FT_POSTGRES_DSN")
	_ = v.BindEnv("events.url", "FT_NATS_URL")
	_ = v.BindEnv("cache.enabled", "FT_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "FT_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	return &conf, nil
}
