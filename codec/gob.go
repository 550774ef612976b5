package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Gob implements Codec using encoding/gob. Every value is encoded as a
// self-contained gob stream so any record can be decoded on its own.
type Gob[T any] struct{}

func NewGob[T any]() *Gob[T] {
	return &Gob[T]{}
}

func (g *Gob[T]) Encode(value T) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(&value); err != nil {
		return nil, fmt.Errorf("gob: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Gob[T]) Decode(data []byte) (T, error) {
	var value T
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&value); err != nil {
		return value, fmt.Errorf("gob: decode: %w", err)
	}
	return value, nil
}
