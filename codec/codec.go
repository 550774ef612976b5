// Package codec turns list elements into bytes and back.
//
// A disklist never looks inside the bytes a Codec produces; it only stores
// them and hands them back to Decode. Each list uses exactly one Codec for
// its whole lifetime, and two lists can only be concatenated when they use
// codecs producing compatible bytes.
package codec

import (
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned by ByName for unregistered names.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec defines how to serialize/deserialize values of a single type.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// Names of the codecs ByName understands.
const (
	NameGob  = "gob"
	NameCBOR = "cbor"
)

// ByName returns the codec registered under name, optionally wrapped with
// zstd compression.
func ByName[T any](name string, compress bool) (Codec[T], error) {
	var c Codec[T]
	switch name {
	case "", NameGob:
		c = NewGob[T]()
	case NameCBOR:
		cb, err := NewCBOR[T]()
		if err != nil {
			return nil, err
		}
		c = cb
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	if compress {
		return NewCompressed(c)
	}
	return c, nil
}
