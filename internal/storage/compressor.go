package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"flighttrack/internal/storage/interfaces"
)

// maxDecodedSize caps one decoded path blob or memory snapshot.
const maxDecodedSize = 512 << 20

// ZstdCompressor packs archived path blobs (sqlite) and memory snapshots.
// EncodeAll and DecodeAll are safe for concurrent use, so one instance is
// shared by every store.
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Compress never fails: EncodeAll has no error path.
func (z *ZstdCompressor) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/4)), nil
}

func (z *ZstdCompressor) Decompress(val []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode of %d bytes: %w", len(val), err)
	}
	return out, nil
}

// NewZstdCompressor favours ratio over speed: path blobs are written once per
// archived flight and snapshots once per save interval.
func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder for path blobs: %w", err)
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(maxDecodedSize),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder for path blobs: %w", err)
	}
	return &ZstdCompressor{encoder: encoder, decoder: decoder}, nil
}
