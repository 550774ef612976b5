package recordio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

var (
	Uint32Size = int64(binary.Size(uint32(0)))
	Uint64Size = int64(binary.Size(uint64(0)))
	// MagicBytes identify the start of a frame (DLR).
	MagicBytes = []byte{0x44, 0x4C, 0x52}
	// HeaderSize is the number of bytes a frame adds to its payload.
	HeaderSize = int64(len(MagicBytes)) + Uint32Size + Uint64Size

	ErrInvalidMagicBytes = errors.New("recordio: invalid magic bytes")
	ErrChecksumMismatch  = errors.New("recordio: checksum mismatch")
	ErrLengthMismatch    = errors.New("recordio: length mismatch")
)

// Append appends the frame for payload to dst and returns the extended slice.
func Append(dst, payload []byte) []byte {
	dst = append(dst, MagicBytes...)
	dst = binary.LittleEndian.AppendUint32(dst, crc32.ChecksumIEEE(payload))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// Decode verifies a complete frame and returns its payload, which aliases
// frame. length is the payload length the caller expects to find.
func Decode(frame []byte, length int64) ([]byte, error) {
	if length < 0 || int64(len(frame)) != Size(length) {
		return nil, fmt.Errorf("%w: frame of %d bytes for payload of %d", ErrLengthMismatch, len(frame), length)
	}
	if !bytes.Equal(frame[:len(MagicBytes)], MagicBytes) {
		return nil, ErrInvalidMagicBytes
	}

	header := frame[len(MagicBytes):HeaderSize]
	checksum := binary.LittleEndian.Uint32(header[:Uint32Size])
	stored := binary.LittleEndian.Uint64(header[Uint32Size:])
	if stored != uint64(length) {
		return nil, fmt.Errorf("%w: header says %d, index says %d", ErrLengthMismatch, stored, length)
	}

	payload := frame[HeaderSize:]
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, ErrChecksumMismatch
	}

	return payload, nil
}

// Size calculates the total size in bytes a frame with a payload of the
// given length occupies.
func Size(length int64) int64 {
	return HeaderSize + length
}
