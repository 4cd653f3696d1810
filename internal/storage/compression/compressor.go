// Package compression frames snapshot records with an optional block codec.
package compression

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrCorrupt is returned when a framed record cannot be decoded.
var ErrCorrupt = errors.New("compression: corrupt frame")

// Compressor is a block codec.
type Compressor interface {
	Name() string

	// Compress returns the compressed block, or nil if data does not shrink.
	Compress(data []byte) ([]byte, error)

	// Decompress expands src into exactly size bytes.
	Decompress(src []byte, size int) ([]byte, error)
}

// Factory creates a new compressor instance.
type Factory func() Compressor

var (
	mu          sync.RWMutex
	compressors = make(map[string]Factory)
)

// Register registers a compressor factory with the given name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	compressors[name] = factory
}

// Get returns a new compressor instance for the given name.
func Get(name string) (Compressor, error) {
	mu.RLock()
	factory, ok := compressors[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
	return factory(), nil
}

// Available returns the registered compressor names, sorted.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(None, func() Compressor { return noCompressor{} })
	Register(LZ4, func() Compressor { return lz4Compressor{} })
}
