package compression

import (
	"encoding/binary"
	"fmt"
)

const (
	frameStored byte = iota
	frameCompressed
)

// Codec wraps a Compressor with a self-describing frame:
// one flag byte, the uvarint raw length, then the payload.
type Codec struct {
	c Compressor
}

// NewCodec returns a Codec for the named compressor.
func NewCodec(name string) (*Codec, error) {
	c, err := Get(name)
	if err != nil {
		return nil, err
	}
	return &Codec{c: c}, nil
}

func (k *Codec) Name() string { return k.c.Name() }

// Encode frames data, storing it raw when the codec cannot shrink it.
func (k *Codec) Encode(data []byte) ([]byte, error) {
	packed, err := k.c.Compress(data)
	if err != nil {
		return nil, err
	}

	flag, payload := frameCompressed, packed
	if packed == nil {
		flag, payload = frameStored, data
	}

	out := make([]byte, 1, 1+binary.MaxVarintLen64+len(payload))
	out[0] = flag
	out = binary.AppendUvarint(out, uint64(len(data)))
	return append(out, payload...), nil
}

// Decode reverses Encode. Frames written with a different compressor decode
// as long as they were stored raw.
func (k *Codec) Decode(frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, ErrCorrupt
	}
	size, n := binary.Uvarint(frame[1:])
	if n <= 0 || size > uint64(len(frame))*255 {
		return nil, ErrCorrupt
	}
	payload := frame[1+n:]

	switch frame[0] {
	case frameStored:
		if uint64(len(payload)) != size {
			return nil, ErrCorrupt
		}
		return append([]byte(nil), payload...), nil
	case frameCompressed:
		return k.c.Decompress(payload, int(size))
	default:
		return nil, fmt.Errorf("%w: flag %d", ErrCorrupt, frame[0])
	}
}
