package storage

import (
	"context"
	"time"

	"flighttrack/internal/models"
	"flighttrack/internal/providers"
)

// instrumentedActive bounds every call by the configured timeout and records its latency.
type instrumentedActive struct {
	next    ActiveTrackStore
	timeout time.Duration
	metrics providers.MetricsProviderInterface
}

type instrumentedArchive struct {
	next    ArchiveStore
	timeout time.Duration
	metrics providers.MetricsProviderInterface
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *instrumentedActive) observe(op string, start time.Time) {
	s.metrics.ObserveStoreDuration(op, time.Since(start))
}

func (s *instrumentedActive) Append(ctx context.Context, report *models.PositionReport) error {
	defer s.observe("active_append", time.Now())
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Append(ctx, report)
}

func (s *instrumentedActive) Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error) {
	defer s.observe("active_latest", time.Now())
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Latest(ctx, flightID, atOrBefore)
}

func (s *instrumentedActive) AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error) {
	defer s.observe("active_all_for", time.Now())
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.AllFor(ctx, flightID)
}

func (s *instrumentedActive) Clear(ctx context.Context, flightID string) error {
	defer s.observe("active_clear", time.Now())
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Clear(ctx, flightID)
}

func (s *instrumentedArchive) observe(op string, start time.Time) {
	s.metrics.ObserveStoreDuration(op, time.Since(start))
}

func (s *instrumentedArchive) Insert(ctx context.Context, flight *models.ArchivedFlight) error {
	defer s.observe("archive_insert", time.Now())
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Insert(ctx, flight)
}

func (s *instrumentedArchive) FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	defer s.observe("archive_find_latest", time.Now())
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.FindLatest(ctx, flightID)
}

// Instrument wraps both stores with per-call timeouts and latency metrics.
func Instrument(stores *Stores, timeout time.Duration, metrics providers.MetricsProviderInterface) *Stores {
	return &Stores{
		Driver:  stores.Driver,
		Active:  &instrumentedActive{next: stores.Active, timeout: timeout, metrics: metrics},
		Archive: &instrumentedArchive{next: stores.Archive, timeout: timeout, metrics: metrics},
		Memory:  stores.Memory,
		close:   stores.close,
	}
}
