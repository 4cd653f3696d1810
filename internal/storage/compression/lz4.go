package compression

import (
	"fmt"

	"github.com/pierrec/lz4"
)

// Registered codec names.
const (
	None = "none"
	LZ4  = "lz4"
)

type noCompressor struct{}

func (noCompressor) Name() string { return None }

func (noCompressor) Compress([]byte) ([]byte, error) { return nil, nil }

func (noCompressor) Decompress(src []byte, size int) ([]byte, error) {
	if len(src) != size {
		return nil, ErrCorrupt
	}
	return append([]byte(nil), src...), nil
}

type lz4Compressor struct{}

func (lz4Compressor) Name() string { return LZ4 }

func (lz4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	// n == 0 means incompressible
	if n == 0 || n >= len(data) {
		return nil, nil
	}
	return compressed[:n], nil
}

func (lz4Compressor) Decompress(src []byte, size int) ([]byte, error) {
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(src, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, ErrCorrupt
	}
	return out, nil
}
