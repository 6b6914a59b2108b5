package models

import "errors"

var (
	// ErrStorageFailure wraps every error coming from a backing store.
	ErrStorageFailure = errors.New("storage failure")
	// ErrNoActiveTrack is returned by the archiver when the flight has no active reports.
	// Re-triggering an archive for an already archived flight ends here, which is not fatal.
	ErrNoActiveTrack = errors.New("no active track")
	// ErrArchiveWriteFailed means the archive insert failed and the active reports were kept.
	ErrArchiveWriteFailed = errors.New("archive write failed")
	// ErrPartialArchiveCleanup means the archive was written but the active reports were not cleared.
	ErrPartialArchiveCleanup = errors.New("partial archive cleanup")
	ErrNotFound              = errors.New("not found")
	ErrInvalidReport         = errors.New("invalid position report")
)
