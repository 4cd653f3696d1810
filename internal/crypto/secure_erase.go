package crypto

import (
	"runtime"
	"sync/atomic"
)

// eraseSink keeps the compiler from proving the zeroed slice dead.
var eraseSink atomic.Uint64

// SecureErase zeroes b in place. Key material handled by the secp256k1
// package passes through here once it has been parsed or serialized.
func SecureErase(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
	if len(b) > 0 {
		eraseSink.Add(uint64(b[0]))
	}
}
