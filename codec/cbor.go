package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR implements Codec using core deterministic CBOR encoding, so equal
// values always produce identical bytes.
type CBOR[T any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCBOR[T any]() (*CBOR[T], error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor: enc mode: %w", err)
	}

	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor: dec mode: %w", err)
	}

	return &CBOR[T]{enc: enc, dec: dec}, nil
}

func (c *CBOR[T]) Encode(value T) ([]byte, error) {
	data, err := c.enc.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cbor: encode: %w", err)
	}
	return data, nil
}

func (c *CBOR[T]) Decode(data []byte) (T, error) {
	var value T
	if err := c.dec.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("cbor: decode: %w", err)
	}
	return value, nil
}
