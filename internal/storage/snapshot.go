package storage

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"flighttrack/internal/models"
	"flighttrack/internal/providers"
	"flighttrack/internal/storage/interfaces"
)

// SnapshotManager writes and reads MemoryStore snapshots as zstd compressed JSON.
type SnapshotManager struct {
	store      *MemoryStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewSnapshotManager(stores *Stores, compressor interfaces.CompressorInterface, logger providers.Logger) *SnapshotManager {
	return &SnapshotManager{
		store:      stores.Memory,
		compressor: compressor,
		logger:     logger,
	}
}

// Enabled reports whether there is an in-process store to snapshot.
func (f *SnapshotManager) Enabled() bool {
	return f.store != nil
}

func (f *SnapshotManager) SaveToFile(fileName string) error {
	if f.store == nil {
		return nil
	}
	jsonData, err := json.Marshal(f.store.Snapshot())
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile restores the store from fileName. A missing file leaves the store empty.
func (f *SnapshotManager) LoadFromFile(fileName string) error {
	if f.store == nil {
		return nil
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return err
	}
	if snap.Version != models.SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	f.store.Restore(&snap)
	f.logger.Infof(providers.TypeApp, "Restored %d active flights and %d archives from %s", len(snap.Active), len(snap.Archived), fileName)
	return nil
}
