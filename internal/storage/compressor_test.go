package storage

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompressor_Roundtrip(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	original := []byte(`[{"lat":40,"lon":-74,"alt":30000,"ts":"2024-01-01T00:00:00Z"}]`)
	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.NotEqual(t, original, compressed)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestZstdCompressor_EmptyData(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	compressed, err := c.Compress([]byte{})
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestZstdCompressor_LargeData(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	original := bytes.Repeat([]byte(`{"lat":40.1,"lon":-74.2},`), 40_000)
	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original)/2)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestZstdCompressor_DecompressInvalidData(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	_, err = c.Decompress([]byte("not valid zstd data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zstd decode of 19 bytes")
}

func TestZstdCompressor_ArchivedPathShrinks(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	var path bytes.Buffer
	path.WriteString("[")
	for i := 0; i < 500; i++ {
		if i > 0 {
			path.WriteString(",")
		}
		fmt.Fprintf(&path, `{"lat":%.4f,"lon":%.4f,"alt":%d,"ts":"2024-01-01T%02d:%02d:00Z"}`, 40+float64(i)/1000, -74-float64(i)/1000, 30000+i, i/60%24, i%60)
	}
	path.WriteString("]")

	compressed, err := c.Compress(path.Bytes())
	require.NoError(t, err)
	assert.Less(t, len(compressed), path.Len()/2)
}
