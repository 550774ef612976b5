package codec

// Bytes stores []byte elements as-is.
type Bytes struct{}

func (Bytes) Encode(value []byte) ([]byte, error) {
	return value, nil
}

func (Bytes) Decode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// String stores string elements as their UTF-8 bytes.
type String struct{}

func (String) Encode(value string) ([]byte, error) {
	return []byte(value), nil
}

func (String) Decode(data []byte) (string, error) {
	return string(data), nil
}
