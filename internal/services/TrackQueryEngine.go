package services

import (
	"context"
	"time"

	"flighttrack/internal/models"
	"flighttrack/internal/storage"
)

// TrackOptions selects what a track query returns. AtTime is ignored when FullPath is set.
type TrackOptions struct {
	FullPath bool
	AtTime   *time.Time
}

// TrackResult holds exactly one of Point or Archive.
type TrackResult struct {
	Point   *models.TrackPoint
	Archive *models.ArchivedFlight
}

func (r *TrackResult) Value() any {
	if r.Archive != nil {
		return r.Archive
	}
	return r.Point
}

type TrackQueryEngineInterface interface {
	TrackActiveOrArchived(ctx context.Context, flightID string, opts TrackOptions) (*TrackResult, error)
}

// TrackQueryEngine answers track queries. It never writes.
type TrackQueryEngine struct {
	active  storage.ActiveTrackStore
	archive storage.ArchiveStore
}

func (q *TrackQueryEngine) TrackActiveOrArchived(ctx context.Context, flightID string, opts TrackOptions) (*TrackResult, error) {
	if opts.FullPath {
		flight, err := q.archive.FindLatest(ctx, flightID)
		if err != nil {
			return nil, err
		}
		return &TrackResult{Archive: flight}, nil
	}

	report, err := q.active.Latest(ctx, flightID, opts.AtTime)
	if err != nil {
		return nil, err
	}
	return &TrackResult{Point: report.ToTrackPoint()}, nil
}

func NewTrackQueryEngine(active storage.ActiveTrackStore, archive storage.ArchiveStore) TrackQueryEngineInterface {
	return &TrackQueryEngine{active: active, archive: archive}
}
