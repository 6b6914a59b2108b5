package storage

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"flighttrack/internal/providers"
	"flighttrack/internal/storage/interfaces"
	"flighttrack/internal/structures"
)

// Scheduler persists the memory store periodically and on shutdown.
// It does nothing for drivers with their own durability.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	snapshot *SnapshotManager
	metrics  providers.MetricsProviderInterface
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) enabled() bool {
	return s.snapshot.Enabled() && s.config.Storage.Snapshot.FilePath != ""
}

func (s *Scheduler) Init() {
	if !s.enabled() {
		return
	}
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Storage.Snapshot.SaveInterval), func() {
		if err := s.Persist(); err == nil {
			s.logger.Debugf(providers.TypeApp, "Persisted snapshot to %s", s.config.Storage.Snapshot.FilePath)
		}
	})
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if !s.enabled() {
		return nil
	}
	return s.snapshot.LoadFromFile(s.config.Storage.Snapshot.FilePath)
}

func (s *Scheduler) Persist() error {
	if !s.enabled() {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.snapshot.SaveToFile(s.config.Storage.Snapshot.FilePath)
	s.metrics.ObserveSnapshotDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, snapshot *SnapshotManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		snapshot: snapshot,
		metrics:  metrics,
	}
}
