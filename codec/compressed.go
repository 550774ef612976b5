package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressed wraps another codec and zstd-compresses its output. Useful for
// large, repetitive elements; small elements usually grow.
type Compressed[T any] struct {
	inner Codec[T]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewCompressed wraps inner with zstd compression at the default level.
func NewCompressed[T any](inner Codec[T]) (*Compressed[T], error) {
	return NewCompressedLevel(inner, zstd.SpeedDefault)
}

// NewCompressedLevel wraps inner with zstd compression at the given level.
func NewCompressedLevel[T any](inner Codec[T], level zstd.EncoderLevel) (*Compressed[T], error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd: new encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd: new decoder: %w", err)
	}

	return &Compressed[T]{
		inner: inner,
		enc:   enc,
		dec:   dec,
	}, nil
}

func (c *Compressed[T]) Encode(value T) ([]byte, error) {
	raw, err := c.inner.Encode(value)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
}

func (c *Compressed[T]) Decode(data []byte) (T, error) {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("zstd: decode: %w", err)
	}
	return c.inner.Decode(raw)
}

// Close releases the encoder and decoder.
func (c *Compressed[T]) Close() error {
	c.dec.Close()
	return c.enc.Close()
}
