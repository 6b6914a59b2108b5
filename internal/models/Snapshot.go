package models

// Snapshot is the on-disk format of the in-memory stores.
type Snapshot struct {
	Version  int                          `json:"version"`
	Sequence int64                        `json:"sequence"`
	Active   map[string][]*SnapshotReport `json:"active"`
	Archived []*ArchivedFlight            `json:"archived"`
}

// SnapshotReport keeps the insertion sequence so equal-timestamp ordering survives a restart.
type SnapshotReport struct {
	Seq    int64           `json:"seq"`
	Report *PositionReport `json:"report"`
}

const SnapshotVersion = 1
