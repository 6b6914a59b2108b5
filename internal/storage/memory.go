package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"flighttrack/internal/models"
)

type memoryReport struct {
	seq    int64
	report models.PositionReport
}

// MemoryStore keeps active reports and archives in process.
// It implements both ActiveTrackStore and ArchiveStore.
type MemoryStore struct {
	mu       sync.RWMutex
	seq      int64
	active   map[string][]memoryReport
	archived map[string][]*models.ArchivedFlight
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		active:   make(map[string][]memoryReport),
		archived: make(map[string][]*models.ArchivedFlight),
	}
}

func (s *MemoryStore) Append(ctx context.Context, report *models.PositionReport) error {
	if err := ctx.Err(); err != nil {
		return storageErr("append", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.active[report.FlightID] = append(s.active[report.FlightID], memoryReport{seq: s.seq, report: *report})
	return nil
}

func (s *MemoryStore) Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("latest", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *memoryReport
	for i := range s.active[flightID] {
		rec := &s.active[flightID][i]
		if atOrBefore != nil && rec.report.Timestamp.After(*atOrBefore) {
			continue
		}
		if best == nil || newerThan(rec, best) {
			best = rec
		}
	}
	if best == nil {
		return nil, models.ErrNotFound
	}
	report := best.report
	return &report, nil
}

func newerThan(a, b *memoryReport) bool {
	if a.report.Timestamp.Equal(b.report.Timestamp) {
		return a.seq > b.seq
	}
	return a.report.Timestamp.After(b.report.Timestamp)
}

func (s *MemoryStore) AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("all for", err)
	}
	s.mu.RLock()
	records := make([]memoryReport, len(s.active[flightID]))
	copy(records, s.active[flightID])
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return newerThan(&records[j], &records[i])
	})

	result := make([]*models.PositionReport, len(records))
	for i := range records {
		report := records[i].report
		result[i] = &report
	}
	return result, nil
}

func (s *MemoryStore) Clear(ctx context.Context, flightID string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("clear", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, flightID)
	return nil
}

func (s *MemoryStore) Insert(ctx context.Context, flight *models.ArchivedFlight) error {
	if err := ctx.Err(); err != nil {
		return storageErr("insert archive", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived[flight.FlightID] = append(s.archived[flight.FlightID], copyArchive(flight))
	return nil
}

func (s *MemoryStore) FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("find archive", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.ArchivedFlight
	for _, a := range s.archived[flightID] {
		if latest == nil || !a.LoggedAt.Before(latest.LoggedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return copyArchive(latest), nil
}

// ActiveFlights returns the number of flights with at least one active report.
func (s *MemoryStore) ActiveFlights() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

// Snapshot returns a deep copy of the store contents.
func (s *MemoryStore) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &models.Snapshot{
		Version:  models.SnapshotVersion,
		Sequence: s.seq,
		Active:   make(map[string][]*models.SnapshotReport, len(s.active)),
		Archived: make([]*models.ArchivedFlight, 0),
	}
	for flightID, records := range s.active {
		reports := make([]*models.SnapshotReport, len(records))
		for i := range records {
			report := records[i].report
			reports[i] = &models.SnapshotReport{Seq: records[i].seq, Report: &report}
		}
		snap.Active[flightID] = reports
	}
	for _, flights := range s.archived {
		for _, a := range flights {
			snap.Archived = append(snap.Archived, copyArchive(a))
		}
	}
	return snap
}

// Restore replaces the store contents with the snapshot.
func (s *MemoryStore) Restore(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq = snap.Sequence
	s.active = make(map[string][]memoryReport, len(snap.Active))
	s.archived = make(map[string][]*models.ArchivedFlight)
	for flightID, reports := range snap.Active {
		for _, r := range reports {
			if r == nil || r.Report == nil {
				continue
			}
			s.active[flightID] = append(s.active[flightID], memoryReport{seq: r.Seq, report: *r.Report})
			if r.Seq > s.seq {
				s.seq = r.Seq
			}
		}
	}
	for _, a := range snap.Archived {
		if a == nil {
			continue
		}
		s.archived[a.FlightID] = append(s.archived[a.FlightID], copyArchive(a))
	}
}

func copyArchive(a *models.ArchivedFlight) *models.ArchivedFlight {
	c := *a
	c.Path = make([]models.PathPoint, len(a.Path))
	copy(c.Path, a.Path)
	return &c
}
