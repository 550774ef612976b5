// Package recordio implements the frame format a disklist uses to store one
// encoded element in its backing store. Every frame carries magic bytes, a
// CRC-32 of the payload and a length prefix, so a read that lands on the
// wrong offset or on damaged bytes is detected instead of being handed to
// the codec.
//
// Frame layout (little endian):
//
//	magic    3 bytes  "DLR"
//	checksum 4 bytes  CRC-32 (IEEE) of the payload
//	length   8 bytes  payload length
//	payload  length bytes
//
// Basic usage:
//
//	frame := recordio.Append(nil, []byte("Hello, World!"))
//
//	payload, err := recordio.Decode(frame, 13)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Calculate frame size
//	size := recordio.Size(int64(len(payload)))
package recordio
